package rasterio

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"
	"io/ioutil"
	"math"

	"github.com/carbocation/gridiou"
	"github.com/carbocation/gridiou/raster"
	"github.com/carbocation/pfx"
	"github.com/disintegration/imaging"
	"golang.org/x/image/tiff"
)

// ReadImage decodes a single-band classification mask stored as a PNG, GIF,
// BMP or JPEG image.
func ReadImage(r io.Reader) (raster.Grid, error) {
	imgBytes, err := readAllBytes(r)
	if err != nil {
		return raster.Grid{}, err
	}

	img, err := imaging.Decode(bytes.NewReader(imgBytes))
	if err != nil {
		return raster.Grid{}, pfx.Err(err)
	}

	return GridFromImage(img)
}

// ReadTIFF decodes a single-band classification mask stored as a TIFF. 16-bit
// grayscale TIFFs keep their full cell values. Georeferencing tags are
// ignored.
func ReadTIFF(r io.Reader) (raster.Grid, error) {
	imgBytes, err := readAllBytes(r)
	if err != nil {
		return raster.Grid{}, err
	}

	img, err := tiff.Decode(bytes.NewReader(imgBytes))
	if err != nil {
		return raster.Grid{}, pfx.Err(err)
	}

	return GridFromImage(img)
}

// The image decoders swallow errors, so we won't see i/o errors if they
// happen during image decoding. To capture these, we read the full
// (decompressed) image into memory here, and pass a byte reader to the
// decoder.
func readAllBytes(r io.Reader) ([]byte, error) {
	dr, _, err := gridiou.MaybeDecompress(r)
	if err != nil {
		return nil, pfx.Err(err)
	}

	imgBytes, err := ioutil.ReadAll(dr)
	if err != nil {
		return nil, pfx.Err(err)
	}

	return imgBytes, nil
}

// GridFromImage converts each pixel of img into a cell value. Gray and Gray16
// images use the stored sample directly. For any other color model, including
// paletted images, the pixel color must be label-encoded, with equal R, G and
// B channels (e.g., #010101 for class 1). Palette indices are never used as
// class codes.
func GridFromImage(img image.Image) (raster.Grid, error) {
	bounds := img.Bounds()
	rows, cols := bounds.Dy(), bounds.Dx()
	values := make([]float64, 0, rows*cols)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			var v float64

			switch typed := img.(type) {
			case *image.Gray:
				v = float64(typed.GrayAt(x, y).Y)
			case *image.Gray16:
				v = float64(typed.Gray16At(x, y).Y)
			default:
				id, err := LabeledPixelToID(img.At(x, y))
				if err != nil {
					return raster.Grid{}, fmt.Errorf("Pixel (%d, %d): %w", x, y, err)
				}
				v = float64(id)
			}

			values = append(values, v)
		}
	}

	return raster.NewGrid(rows, cols, values)
}

// LabeledPixelToID converts the label-encoded pixel (e.g., #010101) which is
// alpha-premultiplied into an ID in the range of 0-255. Fully transparent
// pixels map to 0.
func LabeledPixelToID(c color.Color) (uint32, error) {

	// Find the color channel values for this pixel
	pr, pg, pb, a := c.RGBA()

	// Confirm that we're mapping ID 1 => #010101, etc
	if pr != pg || pg != pb {
		return 0, fmt.Errorf("Encoding expected to have equal values for R, G, and B. Instead, found %d, %d, %d", pr, pg, pb)
	}

	if a == 0 {
		return 0, nil
	}

	// Each color channel is "alpha-premultiplied"
	// (https://golang.org/pkg/image/color/#RGBA), so we divide by alpha
	// (scaling 0-1), then multiply by 255, to get what we're actually looking
	// for
	pixelID := uint32(math.Round(255 * float64(pr) / float64(a)))

	return pixelID, nil
}
