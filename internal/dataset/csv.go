package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
)

// readCSVFile reads the projected columns from the row-oriented fallback
// format. The first row is a header; unparseable or empty metric cells
// become NaN rather than failing the load.
func readCSVFile(path string) (*rawColumns, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	dateIdx := -1
	locIdx := -1
	metricIdx := make(map[int]string)
	for i, name := range header {
		switch {
		case name == ColDate:
			dateIdx = i
		case name == ColLocation:
			locIdx = i
		case projection[name]:
			metricIdx[i] = name
		}
	}
	if dateIdx < 0 {
		return nil, fmt.Errorf("no %s column in header", ColDate)
	}

	raw := &rawColumns{cols: make(map[string][]float64)}
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		d, err := parseDate(row[dateIdx])
		if err != nil {
			return nil, err
		}
		raw.dates = append(raw.dates, d)

		if locIdx >= 0 && raw.location == "" {
			raw.location = row[locIdx]
		}

		for i, name := range metricIdx {
			v, err := strconv.ParseFloat(row[i], 64)
			if err != nil {
				v = math.NaN()
			}
			raw.cols[name] = append(raw.cols[name], v)
		}
	}

	return raw, nil
}
