package rasterio

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"io/ioutil"
	"strconv"
	"strings"

	"github.com/carbocation/gridiou"
	"github.com/carbocation/gridiou/raster"
	"github.com/carbocation/pfx"
)

// Delimiters accepted from auto-detection. A detected rune outside this set
// (for example the '.' of decimal values) is ignored.
var permittedDelimiters = map[rune]struct{}{
	',':  {},
	'\t': {},
	';':  {},
	'|':  {},
}

// ReadDelimited decodes a grid stored as delimited text, one grid row per line.
// The input may be compressed. Blank lines are ignored. Cells are parsed as
// floating point numbers, so "nan" and "-9999" are both accepted.
func ReadDelimited(r io.Reader) (raster.Grid, error) {
	dr, dt, err := gridiou.MaybeDecompress(r)
	if err != nil {
		return raster.Grid{}, pfx.Err(err)
	}

	// The delimiter detector consumes its input, so the whole grid is held
	// in memory and read twice.
	body, err := ioutil.ReadAll(dr)
	if err != nil {
		return raster.Grid{}, pfx.Err(fmt.Errorf("reading %s grid: %w", dt, err))
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return raster.Grid{}, nil
	}

	delim := detectDelimiter(body)

	var records [][]string
	if delim == ' ' {
		records, err = splitWhitespace(body)
	} else {
		records, err = splitDelimited(body, delim)
	}
	if err != nil {
		return raster.Grid{}, err
	}

	return parseRecords(records)
}

func detectDelimiter(body []byte) rune {
	delim := gridiou.DetermineDelimiter(bytes.NewReader(body))
	if _, ok := permittedDelimiters[delim]; ok && bytes.ContainsRune(body, delim) {
		return delim
	}

	// Nothing usable was detected; fall back to what the first line contains
	firstLine := body
	if idx := bytes.IndexByte(body, '\n'); idx >= 0 {
		firstLine = body[:idx]
	}
	for _, candidate := range []rune{'\t', ',', ';', '|'} {
		if bytes.ContainsRune(firstLine, candidate) {
			return candidate
		}
	}

	return ' '
}

func splitDelimited(body []byte, delim rune) ([][]string, error) {
	rdr := csv.NewReader(bytes.NewReader(body))
	rdr.Comma = delim
	rdr.TrimLeadingSpace = delim != '\t'
	// Row lengths are checked in parseRecords so the error can name the line
	rdr.FieldsPerRecord = -1

	records, err := rdr.ReadAll()
	if err != nil {
		return nil, pfx.Err(err)
	}

	return records, nil
}

func splitWhitespace(body []byte) ([][]string, error) {
	var records [][]string

	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), len(body)+1)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		records = append(records, fields)
	}

	return records, pfx.Err(scanner.Err())
}

func parseRecords(records [][]string) (raster.Grid, error) {
	rows := make([][]float64, 0, len(records))

	for line, record := range records {
		// encoding/csv skips blank lines, but a trailing delimiter can still
		// produce one empty field
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}

		// Exported grids often end each line with the delimiter
		if len(record) > 1 && strings.TrimSpace(record[len(record)-1]) == "" {
			record = record[:len(record)-1]
		}

		if len(rows) > 0 && len(record) != len(rows[0]) {
			return raster.Grid{}, fmt.Errorf("Row %d has %d cells, but the first row has %d", line+1, len(record), len(rows[0]))
		}

		row := make([]float64, len(record))
		for j, cell := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return raster.Grid{}, fmt.Errorf("Row %d, column %d: %w", line+1, j+1, err)
			}
			row[j] = v
		}
		rows = append(rows, row)
	}

	return raster.GridFromRows(rows)
}
