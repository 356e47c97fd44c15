package dataset

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/skyalmanac/skyalmanac/internal/log"
)

// Store locates and reads location partitions under a single data directory.
// Layout: one folder per location containing a columnar Arrow IPC file named
// processed_<start_year>_<end_year>.arrow, with a CSV of identical column
// semantics as fallback.
type Store struct {
	dataDir string
}

// NewStore creates a store rooted at dataDir
func NewStore(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

// FolderName derives the partition folder name from a location identifier:
// lowercased, spaces to underscores, commas dropped, dots to underscores.
func FolderName(location string) string {
	s := strings.ToLower(location)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, ".", "_")
	return s
}

// Load reads one location's partition into a Table. The Arrow file is
// preferred; a CSV with the same columns is accepted when no Arrow file
// exists. Returns ErrNotFound when the folder or both file kinds are missing.
func (s *Store) Load(location string) (*Table, error) {
	dir := filepath.Join(s.dataDir, FolderName(location))

	arrowFiles, err := filepath.Glob(filepath.Join(dir, "processed_*.arrow"))
	if err != nil {
		return nil, err
	}
	if len(arrowFiles) > 0 {
		log.Infof("loading %s", filepath.Base(arrowFiles[0]))
		raw, err := readArrowFile(arrowFiles[0])
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", arrowFiles[0], err)
		}
		return s.finish(raw, location)
	}

	csvFiles, err := filepath.Glob(filepath.Join(dir, "processed_*.csv"))
	if err != nil {
		return nil, err
	}
	if len(csvFiles) > 0 {
		log.Infof("loading %s", filepath.Base(csvFiles[0]))
		raw, err := readCSVFile(csvFiles[0])
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", csvFiles[0], err)
		}
		return s.finish(raw, location)
	}

	return nil, fmt.Errorf("location %q: %w", location, ErrNotFound)
}

func (s *Store) finish(raw *rawColumns, location string) (*Table, error) {
	if len(raw.dates) == 0 {
		return nil, fmt.Errorf("location %q: empty partition: %w", location, ErrNotFound)
	}
	if raw.location == "" {
		raw.location = location
	}
	t := raw.build()
	first, last := t.Dates[0], t.Dates[t.Len()-1]
	log.Infof("loaded %d days of historical data for %s (%s to %s)",
		t.Len(), t.LocationName, first.Format("2006-01-02"), last.Format("2006-01-02"))
	return t, nil
}
