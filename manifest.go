package gridiou

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"io/ioutil"
	"strconv"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/gocarina/gocsv"
)

// ManifestEntry is one pair of grids to compare. The no-data columns are
// optional and may be left blank.
type ManifestEntry struct {
	ID              string `csv:"id"`
	ReferencePath   string `csv:"reference"`
	PredictedPath   string `csv:"predicted"`
	ReferenceNoData string `csv:"reference_nodata"`
	PredictedNoData string `csv:"predicted_nodata"`
}

// NoData parses both no-data columns. Blank columns yield nil.
func (m ManifestEntry) NoData() (reference, predicted *float64, err error) {
	if reference, err = parseOptionalFloat(m.ReferenceNoData); err != nil {
		return nil, nil, fmt.Errorf("%s: reference_nodata: %w", m.ID, err)
	}
	if predicted, err = parseOptionalFloat(m.PredictedNoData); err != nil {
		return nil, nil, fmt.Errorf("%s: predicted_nodata: %w", m.ID, err)
	}

	return reference, predicted, nil
}

func parseOptionalFloat(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}

	return &v, nil
}

// ReadManifest parses a delimited manifest with a header row naming at least
// the id, reference and predicted columns. Rows without an id are given their
// line number (counting the header as line 1) as id.
func ReadManifest(r io.Reader) ([]ManifestEntry, error) {
	body, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, pfx.Err(err)
	}

	rdr := csv.NewReader(bytes.NewReader(body))
	rdr.Comma = manifestDelimiter(body)
	// TrimLeadingSpace would also swallow empty tab-delimited fields
	rdr.TrimLeadingSpace = rdr.Comma != '\t'

	var entries []ManifestEntry
	if err := gocsv.UnmarshalCSV(rdr, &entries); err != nil {
		return nil, pfx.Err(err)
	}

	for i, entry := range entries {
		if entry.ID == "" {
			entries[i].ID = strconv.Itoa(i + 2)
		}
		if entry.ReferencePath == "" || entry.PredictedPath == "" {
			return nil, fmt.Errorf("Manifest line %d: both reference and predicted paths are required", i+2)
		}
	}

	return entries, nil
}

// Paths contain characters such as '/' and '.' that can fool the delimiter
// detector, so the header line is consulted first: it only holds column
// names.
func manifestDelimiter(body []byte) rune {
	header := body
	if idx := bytes.IndexByte(body, '\n'); idx >= 0 {
		header = body[:idx]
	}

	switch {
	case bytes.ContainsRune(header, '\t'):
		return '\t'
	case bytes.ContainsRune(header, ','):
		return ','
	}

	return DetermineDelimiter(bytes.NewReader(body))
}
