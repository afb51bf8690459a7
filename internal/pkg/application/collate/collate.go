// Package collate walks a download directory and groups the scattered
// per-file readings into one SensorRecord per physical device. Metadata
// files are ingested in a first phase so that sensor-id data files can
// be resolved against a complete device registry in the second phase.
package collate

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/rs/zerolog"

	"github.com/vasarhelyi/aqstat/domain"
	"github.com/vasarhelyi/aqstat/internal/pkg/application/aqdata"
	"github.com/vasarhelyi/aqstat/internal/pkg/application/timeseries"
	"github.com/vasarhelyi/aqstat/internal/pkg/infrastructure/sensorfiles"
)

// Filter narrows a collection run. The zero value selects everything.
// ChipIDs and Names widen the selection together: with either list
// non-empty, a device must match one of them. ExcludeNames then removes
// devices by display name substring. A geographic center, given directly
// or as the display name of a collected device, keeps only devices
// within GeoRadius metres. The date range skips whole files by the day
// encoded in their names, before any parsing.
type Filter struct {
	ChipIDs       []int
	Names         []string
	ExcludeNames  []string
	GeoCenter     *domain.GPSCoordinate
	GeoCenterName string
	GeoRadius     float64
	DateStart     time.Time
	DateEnd       time.Time
}

func (f Filter) allowsDate(date time.Time) bool {
	if !f.DateStart.IsZero() && date.Before(f.DateStart) {
		return false
	}
	if !f.DateEnd.IsZero() && date.After(f.DateEnd) {
		return false
	}
	return true
}

// Collect reads every metadata and data file under dir and returns one
// record per selected device, in the order first encountered. Devices
// whose measurement table ends up empty are dropped.
func Collect(ctx context.Context, dir string, filter Filter) ([]*aqdata.SensorRecord, error) {
	logger := logging.GetFromContext(ctx)

	metadataFiles := []string{}
	dataFiles := []string{}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case sensorfiles.MetadataExt:
			metadataFiles = append(metadataFiles, path)
		case ".csv":
			dataFiles = append(dataFiles, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %s", dir, err.Error())
	}

	c := &collator{
		logger:    logger,
		filter:    filter,
		byChip:    map[int]*aqdata.SensorRecord{},
		tolerance: timeseries.DefaultMergeTolerance,
	}

	for _, path := range metadataFiles {
		c.ingestMetadata(path)
	}

	if err := c.resolveGeoCenter(); err != nil {
		return nil, err
	}

	for _, path := range dataFiles {
		c.ingestData(path)
	}

	return c.results(), nil
}

type collator struct {
	logger    zerolog.Logger
	filter    Filter
	devices   []*aqdata.SensorRecord
	byChip    map[int]*aqdata.SensorRecord
	geoCenter *domain.GPSCoordinate
	tolerance time.Duration
}

func (c *collator) ingestMetadata(path string) {
	m, err := sensorfiles.LoadMetadata(path)
	if err != nil {
		c.logger.Warn().Err(err).Str("file", filepath.Base(path)).Msg("skipping unreadable metadata")
		return
	}

	if existing := c.find(m); existing != nil {
		conflicts := existing.Metadata.Merge(m)
		for _, conflict := range conflicts {
			c.logger.Warn().Str("device", existing.Label()).Msg(conflict.String())
		}
		c.index(existing)
		return
	}

	record := aqdata.NewSensorRecord()
	record.Metadata = m
	c.register(record)
}

func (c *collator) ingestData(path string) {
	identity, ok := sensorfiles.ParseFilename(path)
	if !ok {
		c.logger.Warn().Str("file", filepath.Base(path)).Msg("skipping file with unknown name scheme")
		return
	}

	if !c.filter.allowsDate(identity.Date) {
		c.logger.Debug().Str("file", filepath.Base(path)).Msg("outside date range")
		return
	}

	switch {
	case identity.ChipID != nil:
		c.ingestMadavi(path, *identity.ChipID)
	case identity.SensorID != nil:
		c.ingestCommunity(path, *identity.SensorID)
	}
}

func (c *collator) ingestMadavi(path string, chipID int) {
	record, ok := c.byChip[chipID]
	if !ok {
		m := domain.NewDeviceMetadata()
		m.ChipID = domain.Int(chipID)
		record = aqdata.NewSensorRecord()
		record.Metadata = m
		c.register(record)
	}

	if !c.selects(record) {
		return
	}

	table, err := sensorfiles.ReadMadaviCSV(path)
	if err != nil {
		c.logger.Warn().Err(err).Str("file", filepath.Base(path)).Msg("skipping unreadable data file")
		return
	}

	record.Data.Merge(table, c.tolerance)
}

func (c *collator) ingestCommunity(path string, sensorID int) {
	record := c.findBySensorID(sensorID)
	if record == nil {
		c.logger.Info().Int("sensor_id", sensorID).Str("file", filepath.Base(path)).Msg("no device claims this sensor, dropping file")
		return
	}

	if !c.selects(record) {
		return
	}

	file, err := sensorfiles.ReadCommunityCSV(path)
	if err != nil {
		c.logger.Warn().Err(err).Str("file", filepath.Base(path)).Msg("skipping unreadable data file")
		return
	}

	record.Data.Merge(file.Data, c.tolerance)
}

func (c *collator) register(record *aqdata.SensorRecord) {
	c.devices = append(c.devices, record)
	c.index(record)
}

func (c *collator) index(record *aqdata.SensorRecord) {
	if record.Metadata.ChipID != nil {
		c.byChip[*record.Metadata.ChipID] = record
	}
}

// find locates the already-registered device a metadata file belongs to,
// by chip id first and by any shared sensor id second.
func (c *collator) find(m *domain.DeviceMetadata) *aqdata.SensorRecord {
	if m.ChipID != nil {
		if record, ok := c.byChip[*m.ChipID]; ok {
			return record
		}
	}
	for _, id := range m.SensorIDs() {
		if record := c.findBySensorID(id); record != nil {
			return record
		}
	}
	return nil
}

func (c *collator) findBySensorID(id int) *aqdata.SensorRecord {
	for _, record := range c.devices {
		if record.Metadata.HasSensorID(id) {
			return record
		}
	}
	return nil
}

func (c *collator) resolveGeoCenter() error {
	if c.filter.GeoCenter != nil && c.filter.GeoCenter.HasPosition() {
		c.geoCenter = c.filter.GeoCenter
		return nil
	}
	if c.filter.GeoCenterName == "" {
		return nil
	}

	for _, record := range c.devices {
		if strings.Contains(record.Metadata.Name, c.filter.GeoCenterName) && record.Metadata.Location.HasPosition() {
			c.geoCenter = &record.Metadata.Location
			return nil
		}
	}

	return fmt.Errorf("failed to resolve geo center: no located device named like %q", c.filter.GeoCenterName)
}

func (c *collator) selects(record *aqdata.SensorRecord) bool {
	m := record.Metadata

	if len(c.filter.ChipIDs) > 0 || len(c.filter.Names) > 0 {
		selected := m.ChipID != nil && containsInt(c.filter.ChipIDs, *m.ChipID)
		if !selected && m.Name != "" {
			selected = containsAnySubstring(m.Name, c.filter.Names)
		}
		if !selected {
			return false
		}
	}

	if m.Name != "" && containsAnySubstring(m.Name, c.filter.ExcludeNames) {
		return false
	}

	if c.geoCenter != nil {
		if !m.Location.HasPosition() {
			return false
		}
		d := domain.Distance(*c.geoCenter.Lat, *c.geoCenter.Lon, *m.Location.Lat, *m.Location.Lon)
		if d > c.filter.GeoRadius {
			return false
		}
	}

	return true
}

func (c *collator) results() []*aqdata.SensorRecord {
	out := []*aqdata.SensorRecord{}
	for _, record := range c.devices {
		if record.Data.IsEmpty() {
			continue
		}
		out = append(out, record)
	}
	return out
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func containsAnySubstring(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
