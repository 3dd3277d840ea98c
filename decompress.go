package gridiou

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"compress/zlib"
	"io"

	"github.com/krolaw/zipstream"
	"github.com/xi2/xz"
)

type DataType byte

const (
	DataTypeInvalid DataType = iota
	DataTypeNoCompression
	DataTypeGzip
	DataTypeZip
	DataTypeXZ
	DataTypeZlib
	DataTypeBZip2
)

func (dt DataType) String() string {
	switch dt {
	case DataTypeNoCompression:
		return "uncompressed"
	case DataTypeGzip:
		return "gzip"
	case DataTypeZip:
		return "zip"
	case DataTypeXZ:
		return "xz"
	case DataTypeZlib:
		return "zlib"
	case DataTypeBZip2:
		return "bzip2"
	}

	return "invalid"
}

// Byte code signatures from https://stackoverflow.com/a/19127748/199475. The
// zlib entry only matches the default compression level header.
var byteCodeSigs = map[DataType][]byte{
	DataTypeGzip:  {0x1f, 0x8b, 0x08},
	DataTypeZip:   {0x50, 0x4b, 0x03, 0x04},
	DataTypeXZ:    {0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00},
	DataTypeZlib:  {0x78, 0x9c},
	DataTypeBZip2: {0x42, 0x5a, 0x68},
}

// DetectDataType checks the leading bytes of a stream against a set of known
// compression signatures. Streams too short to hold any signature are reported
// as uncompressed.
func DetectDataType(head []byte) DataType {
	for dt, sig := range byteCodeSigs {
		if bytes.HasPrefix(head, sig) {
			return dt
		}
	}

	return DataTypeNoCompression
}

// MaybeDecompress wraps r with the decompressor matching its leading bytes.
// Since it only peeks at r, it works on streams that cannot seek, such as
// Google Storage objects.
func MaybeDecompress(r io.Reader) (io.Reader, DataType, error) {
	br := bufio.NewReader(r)

	// Peek returns fewer bytes (and io.EOF) for short inputs, which is fine
	head, err := br.Peek(6)
	if err != nil && err != io.EOF {
		return nil, DataTypeInvalid, err
	}

	dt := DetectDataType(head)

	switch dt {
	case DataTypeGzip:
		zr, err := gzip.NewReader(br)
		return zr, dt, err
	case DataTypeZip:
		// Only the first file in the archive is read
		zr := zipstream.NewReader(br)
		if _, err := zr.Next(); err != nil {
			return nil, dt, err
		}
		return zr, dt, nil
	case DataTypeBZip2:
		return bzip2.NewReader(br), dt, nil
	case DataTypeXZ:
		xr, err := xz.NewReader(br, 0)
		return xr, dt, err
	case DataTypeZlib:
		zr, err := zlib.NewReader(br)
		return zr, dt, err
	}

	return br, dt, nil
}
