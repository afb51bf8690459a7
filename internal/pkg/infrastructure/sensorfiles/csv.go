package sensorfiles

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/vasarhelyi/aqstat/domain"
	"github.com/vasarhelyi/aqstat/internal/pkg/application/aqdata"
	"github.com/vasarhelyi/aqstat/internal/pkg/application/timeseries"
)

const (
	madaviTimeLayout    = "2006/01/02 15:04:05"
	communityTimeLayout = "2006-01-02T15:04:05"
)

// madaviColumns maps madavi.de header names onto canonical table
// columns. The P1/P2 family belongs to the PPD42NS sensor and is left
// out on purpose; only the SDS011 particulate columns are kept.
var madaviColumns = map[string]string{
	"SDS_P1":   aqdata.ColumnPM10,
	"SDS_P2":   aqdata.ColumnPM25,
	"Temp":     aqdata.ColumnTemperature,
	"Humidity": aqdata.ColumnHumidity,
}

// communityColumns maps sensor.community archive header names onto
// canonical table columns.
var communityColumns = map[string]string{
	"P1":          aqdata.ColumnPM10,
	"P2":          aqdata.ColumnPM25,
	"temperature": aqdata.ColumnTemperature,
	"humidity":    aqdata.ColumnHumidity,
	"pressure":    aqdata.ColumnPressure,
}

// ReadMadaviCSV decodes one madavi.de archive file into a measurement
// table. Cells that do not parse as numbers become missing values, rows
// without a parseable timestamp are dropped.
func ReadMadaviCSV(path string) (*timeseries.Table, error) {
	records, err := readSemicolonCSV(path)
	if err != nil {
		return nil, err
	}

	table, err := decodeMeasurements(records, "Time", madaviTimeLayout, madaviColumns)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %s", filepath.Base(path), err.Error())
	}
	return table, nil
}

// CommunityFile is one decoded sensor.community archive file: the
// channel's identity columns plus its measurements.
type CommunityFile struct {
	SensorID   *int
	SensorType string
	Location   domain.GPSCoordinate
	Data       *timeseries.Table
}

// ReadCommunityCSV decodes one sensor.community archive file. Identity
// columns are taken from the first data row; they repeat on every row.
func ReadCommunityCSV(path string) (*CommunityFile, error) {
	records, err := readSemicolonCSV(path)
	if err != nil {
		return nil, err
	}

	table, err := decodeMeasurements(records, "timestamp", communityTimeLayout, communityColumns)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %s", filepath.Base(path), err.Error())
	}

	file := &CommunityFile{Data: table}
	if len(records) > 1 {
		file.readIdentity(records[0], records[1])
	}
	return file, nil
}

func (f *CommunityFile) readIdentity(header, row []string) {
	for i, name := range header {
		if i >= len(row) {
			return
		}
		switch name {
		case "sensor_id":
			if id, err := strconv.Atoi(row[i]); err == nil {
				f.SensorID = &id
			}
		case "sensor_type":
			f.SensorType = row[i]
		case "lat":
			if v, err := strconv.ParseFloat(row[i], 64); err == nil {
				f.Location.Lat = &v
			}
		case "lon":
			if v, err := strconv.ParseFloat(row[i], 64); err == nil {
				f.Location.Lon = &v
			}
		}
	}
}

func readSemicolonCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %s", path, err.Error())
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = ';'
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %s", path, err.Error())
	}
	return records, nil
}

func decodeMeasurements(records [][]string, timeName, layout string, mapping map[string]string) (*timeseries.Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("file is empty")
	}

	header := records[0]
	timeIdx := -1
	indices := map[int]string{}
	order := []string{}
	for i, name := range header {
		if name == timeName {
			timeIdx = i
			continue
		}
		if canonical, ok := mapping[name]; ok {
			indices[i] = canonical
			order = append(order, canonical)
		}
	}
	if timeIdx < 0 {
		return nil, fmt.Errorf("no %s column in header", timeName)
	}

	table := timeseries.New(order...)
	for _, row := range records[1:] {
		if timeIdx >= len(row) {
			continue
		}
		ts, err := time.Parse(layout, row[timeIdx])
		if err != nil {
			continue
		}

		values := map[string]float64{}
		for i, name := range indices {
			if i >= len(row) {
				continue
			}
			if v, err := strconv.ParseFloat(row[i], 64); err == nil {
				values[name] = v
			}
		}
		table.AppendRow(ts, values)
	}

	return table, nil
}
