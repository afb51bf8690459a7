package sensorfiles

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/vasarhelyi/aqstat/domain"
)

// MetadataExt is the extension of per-device metadata files.
const MetadataExt = ".json"

// LoadMetadata reads one device metadata JSON file.
func LoadMetadata(path string) (*domain.DeviceMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata %s: %s", path, err.Error())
	}

	m := domain.NewDeviceMetadata()
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("failed to parse metadata %s: %s", path, err.Error())
	}
	return m, nil
}

// SaveMetadata writes device metadata as indented JSON, the same form
// LoadMetadata reads back without loss.
func SaveMetadata(path string, m *domain.DeviceMetadata) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %s", err.Error())
	}

	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write metadata %s: %s", path, err.Error())
	}
	return nil
}
