// Package aqdata ties one device's metadata to its measurement table and
// implements the operations working on both: merging, calibration,
// cross-device correlation and pollution summaries.
package aqdata

import (
	"fmt"
	"time"

	"github.com/vasarhelyi/aqstat/domain"
	"github.com/vasarhelyi/aqstat/internal/pkg/application/timeseries"
)

// Column names of the measurement table. Raw columns come from the data
// sources, pm10_per_pm2_5 and pm2_5_calib are derived by Calibrate.
const (
	ColumnTemperature = "temperature"
	ColumnHumidity    = "humidity"
	ColumnPressure    = "pressure"
	ColumnPM10        = "pm10"
	ColumnPM25        = "pm2_5"
	ColumnPMRatio     = "pm10_per_pm2_5"
	ColumnPM25Calib   = "pm2_5_calib"
)

// SensorRecord is all collected knowledge about one physical device: who
// and where it is, and what it measured.
type SensorRecord struct {
	Metadata *domain.DeviceMetadata
	Data     *timeseries.Table
}

func NewSensorRecord() *SensorRecord {
	return &SensorRecord{
		Metadata: domain.NewDeviceMetadata(),
		Data:     timeseries.New(),
	}
}

func (r *SensorRecord) Clone() *SensorRecord {
	return &SensorRecord{
		Metadata: r.Metadata.Clone(),
		Data:     r.Data.Clone(),
	}
}

// Merge folds another record into this one: metadata field by field with
// preference for the receiver, measurements collapsed on near-identical
// timestamps. The returned conflicts name the metadata fields that
// disagreed.
func (r *SensorRecord) Merge(other *SensorRecord, tolerance time.Duration) []domain.Conflict {
	conflicts := r.Metadata.Merge(other.Metadata)
	r.Data.Merge(other.Data, tolerance)
	return conflicts
}

// MergeRecords merges two records without modifying either input.
func MergeRecords(a, b *SensorRecord, tolerance time.Duration) (*SensorRecord, []domain.Conflict) {
	merged := a.Clone()
	conflicts := merged.Merge(b, tolerance)
	return merged, conflicts
}

// Label returns a human readable identifier for the device: its display
// name when present, otherwise an id-derived fallback.
func (r *SensorRecord) Label() string {
	if r.Metadata.Name != "" {
		return r.Metadata.Name
	}
	if r.Metadata.ChipID != nil {
		return fmt.Sprintf("chip-%d", *r.Metadata.ChipID)
	}
	if ids := r.Metadata.SensorIDs(); len(ids) > 0 {
		return fmt.Sprintf("sensor-%d", ids[0])
	}
	return "unknown"
}
