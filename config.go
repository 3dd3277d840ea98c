// Package gridiou holds the helpers shared by the grid comparison tools:
// configuration, manifests, and transparent access to local, compressed and
// Google Storage files. The comparison itself lives in package raster.
package gridiou

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/carbocation/pfx"
)

// BigQueryTarget names the table that comparison rows are streamed into.
type BigQueryTarget struct {
	Project string `json:"project"`
	Dataset string `json:"dataset"`
	Table   string `json:"table"`
}

// Enabled reports whether every part of the table name is set.
func (b BigQueryTarget) Enabled() bool {
	return b.Project != "" && b.Dataset != "" && b.Table != ""
}

// JSONConfig seeds the command line tools. Every field can also be set by a
// flag, and flags win.
type JSONConfig struct {
	ConfigPath string `json:"-"`

	ReferencePath   string   `json:"reference"`
	PredictedPath   string   `json:"predicted"`
	ReferenceLabel  string   `json:"reference_label"`
	PredictedLabel  string   `json:"predicted_label"`
	ReferenceNoData *float64 `json:"reference_nodata,omitempty"`
	PredictedNoData *float64 `json:"predicted_nodata,omitempty"`

	OutputPath   string `json:"output"`
	Format       string `json:"format"`
	ManifestPath string `json:"manifest"`

	// Service account JSON used for Google Storage and BigQuery. If unset,
	// the application default credentials are used.
	Credentials string `json:"credentials"`

	BigQuery BigQueryTarget `json:"bigquery"`
}

func ParseJSONConfigFromPath(path string) (JSONConfig, error) {
	out := JSONConfig{ConfigPath: path}

	f, err := os.Open(ExpandHome(path))
	if err != nil {
		return out, pfx.Err(err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		if e, ok := err.(*json.SyntaxError); ok {
			return out, pfx.Err(fmt.Errorf("%s: syntax error at byte offset %d: %w", path, e.Offset, err))
		}

		return out, pfx.Err(err)
	}

	// Interpret ~ if present
	out.ConfigPath = ExpandHome(out.ConfigPath)
	out.ReferencePath = ExpandHome(out.ReferencePath)
	out.PredictedPath = ExpandHome(out.PredictedPath)
	out.OutputPath = ExpandHome(out.OutputPath)
	out.ManifestPath = ExpandHome(out.ManifestPath)
	out.Credentials = ExpandHome(out.Credentials)

	return out, nil
}
