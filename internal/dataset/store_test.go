package dataset

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFolderName(t *testing.T) {
	tests := []struct {
		location string
		want     string
	}{
		{"Nairobi, Kenya", "nairobi_kenya"},
		{"New York", "new_york"},
		{"st. louis", "st__louis"},
		{"lisbon", "lisbon"},
		{"Cape Town, South Africa", "cape_town_south_africa"},
	}

	for _, tt := range tests {
		if got := FolderName(tt.location); got != tt.want {
			t.Errorf("FolderName(%q) = %q, want %q", tt.location, got, tt.want)
		}
	}
}

func writeTestCSV(t *testing.T, dataDir, location string, rows []string) {
	t.Helper()
	dir := filepath.Join(dataDir, FolderName(location))
	require.NoError(t, os.MkdirAll(dir, 0o755))
	content := ""
	for _, r := range rows {
		content += r + "\n"
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "processed_2020_2021.csv"), []byte(content), 0o644))
}

func TestLoadCSV(t *testing.T) {
	dataDir := t.TempDir()

	// Rows deliberately out of chronological order, with one bad metric cell
	writeTestCSV(t, dataDir, "Nairobi, Kenya", []string{
		"date,T2M_mean,T2M_min,T2M_max,PRECTOT_mm,U10M,V10M,CLDTOT_pct,location_name",
		"2020-01-03,22.0,18.0,27.0,0.0,3.0,4.0,40.0,Nairobi",
		"2020-01-01,21.0,17.0,26.0,5.5,0.0,1.0,80.0,Nairobi",
		"2020-01-02,21.5,17.5,26.5,bad,1.0,0.0,60.0,Nairobi",
	})

	store := NewStore(dataDir)
	table, err := store.Load("Nairobi, Kenya")
	require.NoError(t, err)

	require.Equal(t, 3, table.Len())
	assert.Equal(t, "Nairobi", table.LocationName)

	// Rows come back sorted by date
	assert.Equal(t, "2020-01-01", table.Dates[0].Format("2006-01-02"))
	assert.Equal(t, "2020-01-03", table.Dates[2].Format("2006-01-02"))
	assert.Equal(t, 21.0, table.TempMean[0])
	assert.Equal(t, 22.0, table.TempMean[2])

	// Unparseable cell becomes NaN, not an error
	assert.True(t, math.IsNaN(table.Precip[1]))

	// Wind speed derived from the U/V components
	assert.InDelta(t, 5.0, table.WindSpeed[2], 1e-9)
	assert.InDelta(t, 1.0, table.WindSpeed[0], 1e-9)

	// Calendar fields populated
	assert.Equal(t, 2020, table.Year[0])
	assert.Equal(t, 1, table.Month[0])
	assert.Equal(t, 2, table.Day[1])
	assert.Equal(t, 3, table.DayOfYear[2])

	start, end := table.YearRange()
	assert.Equal(t, 2020, start)
	assert.Equal(t, 2020, end)
}

func TestLoadMissingLocation(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.Load("Atlantis")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "Atlantis")
}

func TestLoadEmptyPartition(t *testing.T) {
	dataDir := t.TempDir()
	writeTestCSV(t, dataDir, "lisbon", []string{
		"date,T2M_mean,T2M_min,T2M_max,PRECTOT_mm,WindSpeed,CLDTOT_pct",
	})

	_, err := NewStore(dataDir).Load("lisbon")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLoadCSVWindSpeedColumnPreferred(t *testing.T) {
	dataDir := t.TempDir()
	rows := []string{"date,T2M_mean,T2M_min,T2M_max,PRECTOT_mm,WindSpeed,U10M,V10M,CLDTOT_pct"}
	for i := 1; i <= 3; i++ {
		rows = append(rows, fmt.Sprintf("2020-01-%02d,20,15,25,0,9.0,3.0,4.0,50", i))
	}
	writeTestCSV(t, dataDir, "lisbon", rows)

	table, err := NewStore(dataDir).Load("lisbon")
	require.NoError(t, err)
	// A present WindSpeed column wins over derivation from components
	assert.Equal(t, 9.0, table.WindSpeed[0])
}
