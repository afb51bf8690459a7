package sensorfiles

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vasarhelyi/aqstat/domain"
)

// ConvertToMetadata builds starter device metadata from one
// sensor.community data file. Registration on sensor.community assigns
// consecutive ids to the two sensors of one device, so the counterpart
// channel's id is guessed as the neighbouring id: climate sensor right
// after the particulate sensor.
func ConvertToMetadata(csvPath string) (*domain.DeviceMetadata, error) {
	identity, ok := ParseFilename(csvPath)
	if !ok || identity.SensorID == nil {
		return nil, fmt.Errorf("failed to convert %s: not a sensor.community data file", filepath.Base(csvPath))
	}

	file, err := ReadCommunityCSV(csvPath)
	if err != nil {
		return nil, err
	}

	sensorType := file.SensorType
	if sensorType == "" {
		sensorType = identity.SensorType
	}
	id := *identity.SensorID
	if file.SensorID != nil {
		id = *file.SensorID
	}

	m := domain.NewDeviceMetadata()
	m.Location = file.Location

	switch {
	case strings.EqualFold(sensorType, "sds011"):
		addParticulateChannels(m, sensorType, id)
		addClimateChannels(m, "DHT22", id+1, false)
	case strings.EqualFold(sensorType, "dht22"):
		addClimateChannels(m, sensorType, id, false)
		addParticulateChannels(m, "SDS011", id-1)
	case strings.EqualFold(sensorType, "bme280"):
		addClimateChannels(m, sensorType, id, true)
		addParticulateChannels(m, "SDS011", id-1)
	default:
		return nil, fmt.Errorf("failed to convert %s: unknown sensor type %s", filepath.Base(csvPath), sensorType)
	}

	return m, nil
}

func addParticulateChannels(m *domain.DeviceMetadata, sensorType string, id int) {
	for _, channel := range []string{"pm10", "pm2_5"} {
		m.Sensors[channel] = domain.SensorDescriptor{Name: channel, Type: sensorType, SensorID: domain.Int(id)}
	}
}

func addClimateChannels(m *domain.DeviceMetadata, sensorType string, id int, pressure bool) {
	channels := []string{"temperature", "humidity"}
	if pressure {
		channels = append(channels, "pressure")
	}
	for _, channel := range channels {
		m.Sensors[channel] = domain.SensorDescriptor{Name: channel, Type: sensorType, SensorID: domain.Int(id)}
	}
}
