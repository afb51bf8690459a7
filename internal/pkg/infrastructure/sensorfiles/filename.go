// Package sensorfiles decodes the on-disk file families produced by the
// madavi.de and sensor.community archives: the two file name grammars,
// the semicolon separated CSV payloads and the per-device metadata JSON.
package sensorfiles

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the day format used in archive file names and filter
// flags.
const DateLayout = "2006-01-02"

// FileIdentity is what a data file's name reveals about its origin:
// madavi names carry the chip id, sensor.community names carry one
// sensor id plus its hardware type. Both carry the measurement day.
type FileIdentity struct {
	ChipID     *int
	SensorID   *int
	SensorType string
	Date       time.Time
}

// ParseFilename matches a file name against the two known archive
// grammars:
//
//	data-esp8266-<chipid>-YYYY-MM-DD.csv      madavi.de
//	YYYY-MM-DD_<type>_sensor_<sensorid>.csv   sensor.community
//
// ok is false when the name fits neither.
func ParseFilename(name string) (FileIdentity, bool) {
	base := filepath.Base(name)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	if identity, ok := parseMadaviName(stem); ok {
		return identity, true
	}
	if identity, ok := parseCommunityName(stem); ok {
		return identity, true
	}

	return FileIdentity{}, false
}

func parseMadaviName(stem string) (FileIdentity, bool) {
	parts := strings.Split(stem, "-")
	if len(parts) != 6 || parts[0] != "data" || parts[1] != "esp8266" {
		return FileIdentity{}, false
	}

	chipID, err := strconv.Atoi(parts[2])
	if err != nil {
		return FileIdentity{}, false
	}
	date, err := time.Parse(DateLayout, strings.Join(parts[3:], "-"))
	if err != nil {
		return FileIdentity{}, false
	}

	return FileIdentity{ChipID: &chipID, Date: date}, true
}

func parseCommunityName(stem string) (FileIdentity, bool) {
	parts := strings.Split(stem, "_")
	if len(parts) != 4 || parts[2] != "sensor" {
		return FileIdentity{}, false
	}

	date, err := time.Parse(DateLayout, parts[0])
	if err != nil {
		return FileIdentity{}, false
	}
	sensorID, err := strconv.Atoi(parts[3])
	if err != nil {
		return FileIdentity{}, false
	}

	return FileIdentity{SensorID: &sensorID, SensorType: parts[1], Date: date}, true
}
