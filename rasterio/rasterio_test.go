package rasterio

import (
	"bytes"
	"compress/gzip"
	"context"
	"image"
	"image/color"
	"image/png"
	"io/ioutil"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/carbocation/gridiou/raster"
	"golang.org/x/image/tiff"
)

func gridRows(g raster.Grid) [][]float64 {
	s := g.Shape()
	out := make([][]float64, s.Rows)
	for i := range out {
		out[i] = make([]float64, s.Cols)
		for j := range out[i] {
			out[i][j] = g.At(i, j)
		}
	}
	return out
}

func assertRows(t *testing.T, name string, g raster.Grid, expected [][]float64) {
	t.Helper()

	got := gridRows(g)
	if len(got) != len(expected) {
		t.Fatalf("%s: got %d rows, expected %d (%v)", name, len(got), len(expected), got)
	}
	for i := range expected {
		if len(got[i]) != len(expected[i]) {
			t.Fatalf("%s: row %d has %d cells, expected %d", name, i, len(got[i]), len(expected[i]))
		}
		for j := range expected[i] {
			if got[i][j] != expected[i][j] {
				t.Errorf("%s: cell (%d, %d) = %v, expected %v", name, i, j, got[i][j], expected[i][j])
			}
		}
	}
}

func TestReadDelimited(t *testing.T) {
	expected := [][]float64{
		{1, 2, -9999},
		{0, 1, 1},
	}

	for _, v := range []struct {
		Name  string
		Input string
	}{
		{"comma", "1,2,-9999\n0,1,1\n"},
		{"tab", "1\t2\t-9999\n0\t1\t1\n"},
		{"semicolon", "1;2;-9999\n0;1;1"},
		{"spaces", "1  2 -9999\n\n  0 1   1\n"},
		{"padded comma", "1, 2, -9999\r\n0, 1, 1\r\n"},
		{"trailing comma", "1,2,-9999,\n0,1,1,\n"},
		{"trailing tab", "1\t2\t-9999\t\n0\t1\t1\t\n"},
	} {
		g, err := ReadDelimited(strings.NewReader(v.Input))
		if err != nil {
			t.Fatalf("%s: %v", v.Name, err)
		}
		assertRows(t, v.Name, g, expected)
	}
}

func TestReadDelimitedDecimals(t *testing.T) {
	g, err := ReadDelimited(strings.NewReader("1.0 0.5\n2.25 1.0\n"))
	if err != nil {
		t.Fatal(err)
	}
	assertRows(t, "decimals", g, [][]float64{{1, 0.5}, {2.25, 1}})
}

func TestReadDelimitedGzip(t *testing.T) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	gw.Write([]byte("1,0\n0,1\n"))
	gw.Close()

	g, err := ReadDelimited(&buf)
	if err != nil {
		t.Fatal(err)
	}
	assertRows(t, "gzip", g, [][]float64{{1, 0}, {0, 1}})
}

func TestReadDelimitedErrors(t *testing.T) {
	for _, v := range []struct {
		Name  string
		Input string
	}{
		{"ragged", "1,0,1\n0,1\n"},
		{"text", "1,0\nflood,1\n"},
	} {
		if _, err := ReadDelimited(strings.NewReader(v.Input)); err == nil {
			t.Errorf("%s: expected an error", v.Name)
		}
	}
}

func TestReadDelimitedEmpty(t *testing.T) {
	g, err := ReadDelimited(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if g.Shape().Size() != 0 {
		t.Fatalf("Expected an empty grid, got %v", g.Shape())
	}
}

func TestGridFromImageGray(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 3, 2))
	img.SetGray(0, 0, color.Gray{Y: 1})
	img.SetGray(1, 0, color.Gray{Y: 2})
	img.SetGray(2, 1, color.Gray{Y: 255})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}

	g, err := ReadImage(&buf)
	if err != nil {
		t.Fatal(err)
	}
	assertRows(t, "gray png", g, [][]float64{
		{1, 2, 0},
		{0, 0, 255},
	})
}

func TestGridFromImageLabelEncoded(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{R: 1, G: 1, B: 1, A: 255})
	img.Set(1, 0, color.NRGBA{R: 2, G: 2, B: 2, A: 255})
	img.Set(0, 1, color.NRGBA{R: 0, G: 0, B: 0, A: 0})
	img.Set(1, 1, color.NRGBA{R: 1, G: 1, B: 1, A: 255})

	g, err := GridFromImage(img)
	if err != nil {
		t.Fatal(err)
	}
	assertRows(t, "label encoded", g, [][]float64{
		{1, 2},
		{0, 1},
	})

	img.Set(0, 0, color.NRGBA{R: 255, G: 0, B: 0, A: 255})
	if _, err := GridFromImage(img); err == nil {
		t.Fatal("Expected an error for a pixel with unequal channels")
	}
}

func TestReadImagePaletted(t *testing.T) {
	// Palette order deliberately differs from the label codes
	palette := color.Palette{
		color.RGBA{A: 255},
		color.RGBA{R: 2, G: 2, B: 2, A: 255},
		color.RGBA{R: 1, G: 1, B: 1, A: 255},
	}
	img := image.NewPaletted(image.Rect(0, 0, 3, 1), palette)
	img.SetColorIndex(0, 0, 2)
	img.SetColorIndex(1, 0, 1)
	img.SetColorIndex(2, 0, 0)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}

	g, err := ReadImage(&buf)
	if err != nil {
		t.Fatal(err)
	}
	assertRows(t, "paletted png", g, [][]float64{{1, 2, 0}})

	if got := raster.Binarize(g).Sum(); got != 1 {
		t.Fatalf("Expected the #010101 pixel to be the only positive cell, got %d", got)
	}
}

func TestGridFromImageOffsetBounds(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 4)).SubImage(image.Rect(1, 1, 3, 4)).(*image.Gray)
	img.SetGray(1, 1, color.Gray{Y: 1})

	g, err := GridFromImage(img)
	if err != nil {
		t.Fatal(err)
	}
	if g.Shape() != (raster.Shape{Rows: 3, Cols: 2}) {
		t.Fatalf("Shape %v, expected 3 x 2", g.Shape())
	}
	if g.At(0, 0) != 1 {
		t.Fatalf("Top-left cell = %v, expected 1", g.At(0, 0))
	}
}

func TestReadTIFFGray16(t *testing.T) {
	img := image.NewGray16(image.Rect(0, 0, 2, 1))
	img.SetGray16(0, 0, color.Gray16{Y: 1})
	img.SetGray16(1, 0, color.Gray16{Y: 65535})

	var buf bytes.Buffer
	if err := tiff.Encode(&buf, img, nil); err != nil {
		t.Fatal(err)
	}

	g, err := ReadTIFF(&buf)
	if err != nil {
		t.Fatal(err)
	}
	assertRows(t, "gray16 tiff", g, [][]float64{{1, 65535}})
}

func TestFormatFromPath(t *testing.T) {
	for path, expected := range map[string]Format{
		"flood.csv":           FormatDelimited,
		"flood.csv.gz":        FormatDelimited,
		"gs://b/flood.TIF":    FormatTIFF,
		"/x/flood.tiff":       FormatTIFF,
		"mask.png":            FormatImage,
		"mask.bmp":            FormatImage,
		"reference":           FormatDelimited,
		"archive.tif.gz":      FormatTIFF,
		"/data/predicted.txt": FormatDelimited,
	} {
		if got := FormatFromPath(path); got != expected {
			t.Errorf("%s: got %s, expected %s", path, got, expected)
		}
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "predicted.csv")
	if err := ioutil.WriteFile(path, []byte("1,0\n2,1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	nodata := 2.0
	g, err := Load(context.Background(), path, nil, &nodata)
	if err != nil {
		t.Fatal(err)
	}
	if !g.HasNoData || g.NoData != 2 {
		t.Fatalf("No-data sentinel not recorded: %+v", g)
	}
	assertRows(t, "load", g, [][]float64{{1, 0}, {2, 1}})

	if _, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.csv"), nil, nil); err == nil {
		t.Fatal("Expected an error for a missing file")
	}
}

func TestLoadedGridsCompare(t *testing.T) {
	ref, err := ReadDelimited(strings.NewReader("1 1\n0 0\n"))
	if err != nil {
		t.Fatal(err)
	}
	pred, err := ReadDelimited(strings.NewReader("1,0\n0,0\n"))
	if err != nil {
		t.Fatal(err)
	}

	res, err := raster.Compare(ref, pred)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(res.Metrics.IoU-0.5) > 1e-9 {
		t.Fatalf("IoU = %v, expected 0.5", res.Metrics.IoU)
	}
}
