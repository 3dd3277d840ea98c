// Package rasterio loads classification grids from local files or Google
// Storage. It decodes cell values only; projections and georeferencing are
// not interpreted.
package rasterio

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/gridiou"
	"github.com/carbocation/gridiou/raster"
	"github.com/carbocation/pfx"
)

type Format uint8

const (
	FormatDelimited Format = iota
	FormatImage
	FormatTIFF
)

func (f Format) String() string {
	switch f {
	case FormatImage:
		return "image"
	case FormatTIFF:
		return "tiff"
	}

	return "delimited"
}

// FormatFromPath picks a decoder based on the file extension. A trailing
// compression extension (e.g., .csv.gz) is ignored. Unknown extensions are
// treated as delimited text.
func FormatFromPath(path string) Format {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".gz", ".bz2", ".xz", ".zip":
		ext = strings.ToLower(filepath.Ext(strings.TrimSuffix(path, filepath.Ext(path))))
	}

	switch ext {
	case ".png", ".bmp", ".gif", ".jpg", ".jpeg":
		return FormatImage
	case ".tif", ".tiff":
		return FormatTIFF
	}

	return FormatDelimited
}

// Load reads the grid at path, which may be a gs:// URL if client is non-nil.
// If nodata is non-nil, it is recorded as the grid's no-data sentinel.
func Load(ctx context.Context, path string, client *storage.Client, nodata *float64) (raster.Grid, error) {
	f, err := gridiou.MaybeOpenFromGoogleStorage(ctx, path, client)
	if err != nil {
		return raster.Grid{}, err
	}
	defer f.Close()

	var g raster.Grid
	switch FormatFromPath(path) {
	case FormatImage:
		g, err = ReadImage(f)
	case FormatTIFF:
		g, err = ReadTIFF(f)
	default:
		g, err = ReadDelimited(f)
	}
	if err != nil {
		return raster.Grid{}, pfx.Err(fmt.Errorf("%s: %w", path, err))
	}

	if nodata != nil {
		g = g.WithNoData(*nodata)
	}

	return g, nil
}
