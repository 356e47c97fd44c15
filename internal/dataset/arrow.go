package dataset

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"
)

// readArrowFile reads the projected columns from an Arrow IPC file. Metric
// columns may be float64, float32, or integer-typed; the date column may be a
// timestamp, date32, or an ISO-8601 string.
func readArrowFile(path string) (*rawColumns, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rdr, err := ipc.NewFileReader(f, ipc.WithAllocator(memory.DefaultAllocator))
	if err != nil {
		return nil, err
	}
	defer rdr.Close()

	raw := &rawColumns{cols: make(map[string][]float64)}
	schema := rdr.Schema()

	for i := 0; i < rdr.NumRecords(); i++ {
		rec, err := rdr.Record(i)
		if err != nil {
			return nil, err
		}
		if err := appendRecord(raw, schema, rec); err != nil {
			return nil, err
		}
	}

	return raw, nil
}

func appendRecord(raw *rawColumns, schema *arrow.Schema, rec arrow.Record) error {
	for j, field := range schema.Fields() {
		if !projection[field.Name] {
			continue
		}
		col := rec.Column(j)

		switch field.Name {
		case ColDate:
			if err := appendDates(raw, col); err != nil {
				return err
			}
		case ColLocation:
			if sa, ok := col.(*array.String); ok && sa.Len() > 0 && raw.location == "" {
				raw.location = sa.Value(0)
			}
		default:
			appendFloats(raw, field.Name, col)
		}
	}
	return nil
}

func appendDates(raw *rawColumns, col arrow.Array) error {
	switch a := col.(type) {
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		for i := 0; i < a.Len(); i++ {
			raw.dates = append(raw.dates, a.Value(i).ToTime(unit).UTC())
		}
	case *array.Date32:
		for i := 0; i < a.Len(); i++ {
			raw.dates = append(raw.dates, a.Value(i).ToTime().UTC())
		}
	case *array.String:
		for i := 0; i < a.Len(); i++ {
			d, err := parseDate(a.Value(i))
			if err != nil {
				return err
			}
			raw.dates = append(raw.dates, d)
		}
	default:
		return fmt.Errorf("unsupported date column type %s", col.DataType())
	}
	return nil
}

func appendFloats(raw *rawColumns, name string, col arrow.Array) {
	vals := make([]float64, col.Len())
	for i := range vals {
		vals[i] = math.NaN()
	}

	switch a := col.(type) {
	case *array.Float64:
		for i := 0; i < a.Len(); i++ {
			if !a.IsNull(i) {
				vals[i] = a.Value(i)
			}
		}
	case *array.Float32:
		for i := 0; i < a.Len(); i++ {
			if !a.IsNull(i) {
				vals[i] = float64(a.Value(i))
			}
		}
	case *array.Int64:
		for i := 0; i < a.Len(); i++ {
			if !a.IsNull(i) {
				vals[i] = float64(a.Value(i))
			}
		}
	case *array.Int32:
		for i := 0; i < a.Len(); i++ {
			if !a.IsNull(i) {
				vals[i] = float64(a.Value(i))
			}
		}
	default:
		// Unrecognized metric encoding; treat the column as absent
		return
	}

	raw.cols[name] = append(raw.cols[name], vals...)
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"} {
		if d, err := time.Parse(layout, s); err == nil {
			return d.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}
