package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/carbocation/gridiou"
	"github.com/carbocation/gridiou/raster"
	"github.com/carbocation/gridiou/report"
	"github.com/rs/zerolog"
)

func writeGrid(t *testing.T, dir, name, body string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := ioutil.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCompareAndRender(t *testing.T) {
	dir := t.TempDir()
	cfg := gridiou.JSONConfig{
		ReferencePath: writeGrid(t, dir, "reference.csv", "1,1,1,1\n1,1,1,1\n1,1,1,1\n1,1,1,1\n"),
		PredictedPath: writeGrid(t, dir, "predicted.csv", "1,1,1,1,1\n1,1,1,1,1\n1,1,1,1,1\n"),
	}

	res, err := compare(context.Background(), cfg, nil, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if res.Matrix.TruePositive != 12 || res.Metrics.IoU != 1 {
		t.Fatalf("Unexpected result %+v", res)
	}

	text, err := render("text", res, report.Labels{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(text), "Compared shape:  3 x 4") {
		t.Errorf("Unexpected text report:\n%s", text)
	}

	tsv, err := render("tsv", res, report.Labels{})
	if err != nil {
		t.Fatal(err)
	}
	if lines := strings.Split(strings.TrimSpace(string(tsv)), "\n"); len(lines) != 2 {
		t.Errorf("Expected a header and one row, got:\n%s", tsv)
	}

	if _, err := render("xml", res, report.Labels{}); err == nil {
		t.Error("Expected an error for an unknown format")
	}
}

func TestCompareEmpty(t *testing.T) {
	dir := t.TempDir()
	cfg := gridiou.JSONConfig{
		ReferencePath: writeGrid(t, dir, "reference.csv", ""),
		PredictedPath: writeGrid(t, dir, "predicted.csv", "1,0\n"),
	}

	_, err := compare(context.Background(), cfg, nil, zerolog.Nop())

	var empty *raster.EmptyInputError
	if !errors.As(err, &empty) {
		t.Fatalf("Expected *raster.EmptyInputError, got %v", err)
	}
}

func TestRunWritesOutput(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "report.txt")
	cfg := gridiou.JSONConfig{
		ReferencePath: writeGrid(t, dir, "reference.txt", "1 1\n0 0\n"),
		PredictedPath: writeGrid(t, dir, "predicted.txt", "1 0\n0 0\n"),
		OutputPath:    output,
		Format:        "text",
	}

	if err := run(context.Background(), cfg, zerolog.Nop()); err != nil {
		t.Fatal(err)
	}

	body, err := ioutil.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), "IoU (Intersection over Union): 0.5000 (50.00%)") {
		t.Fatalf("Unexpected saved report:\n%s", body)
	}
}

func TestOptionalFloat(t *testing.T) {
	var o optionalFloat
	if o.String() != "" {
		t.Fatalf("Unset flag printed %q", o.String())
	}
	if err := o.Set("-9999"); err != nil {
		t.Fatal(err)
	}
	if o.value == nil || *o.value != -9999 || o.String() != "-9999" {
		t.Fatalf("Unexpected value %v", o.String())
	}
	if err := o.Set("none"); err == nil {
		t.Fatal("Expected an error for a non-numeric value")
	}
}

func TestUsage(t *testing.T) {
	var buf bytes.Buffer
	flag.CommandLine.SetOutput(&buf)
	defer flag.CommandLine.SetOutput(nil)

	flag.Usage()

	for _, expected := range []string{"binary was built with", "-reference", `"predicted_nodata": -9999`} {
		if !strings.Contains(buf.String(), expected) {
			t.Errorf("Usage is missing %q:\n%s", expected, buf.String())
		}
	}
}
