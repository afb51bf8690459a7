package domain

import (
	"fmt"
	"sort"
)

// GPSCoordinate is the position of a measurement device. Nil fields are
// unknown. AMSL is metres above mean sea level, AGL is the sensor height
// above ground in metres.
type GPSCoordinate struct {
	Lat  *float64 `json:"lat"`
	Lon  *float64 `json:"lon"`
	AMSL *float64 `json:"amsl"`
	AGL  *float64 `json:"agl"`
}

func (c GPSCoordinate) HasPosition() bool {
	return c.Lat != nil && c.Lon != nil
}

func (c GPSCoordinate) Equal(other GPSCoordinate) bool {
	return floatPtrEqual(c.Lat, other.Lat) &&
		floatPtrEqual(c.Lon, other.Lon) &&
		floatPtrEqual(c.AMSL, other.AMSL) &&
		floatPtrEqual(c.AGL, other.AGL)
}

// ContactInfo identifies the owner of a device. Empty strings are unknown.
type ContactInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// SensorDescriptor describes one sensing channel attached to a device:
// the logical channel name ("pm10", "temperature", ...), the hardware
// family ("SDS011", "DHT22", "BME280") and the per-channel sensor id used
// by the sensor.community archive. A nil SensorID is unknown; 0 is a
// valid, present id.
type SensorDescriptor struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	SensorID *int   `json:"sensor_id"`
}

// DeviceMetadata holds the descriptive attributes of one physical
// multi-sensor device. A device is identified by its chip id in the
// madavi.de archive and by its per-channel sensor ids in the
// sensor.community archive; both identities live here. Merged latches
// true once any merge detected conflicting identifiers, for auditing.
type DeviceMetadata struct {
	Name        string                      `json:"name"`
	ChipID      *int                        `json:"chip_id"`
	Sensors     map[string]SensorDescriptor `json:"sensors"`
	Description string                      `json:"description"`
	Location    GPSCoordinate               `json:"location"`
	Owner       ContactInfo                 `json:"owner"`
	Merged      bool                        `json:"merged,omitempty"`
}

func NewDeviceMetadata() *DeviceMetadata {
	return &DeviceMetadata{
		Sensors: map[string]SensorDescriptor{},
	}
}

// Conflict reports one identifier mismatch found while merging two
// descriptions of what was assumed to be the same device. The receiver's
// value is kept, the other one is ignored.
type Conflict struct {
	Field   string
	Kept    int
	Ignored int
}

func (c Conflict) String() string {
	return fmt.Sprintf("%s conflict: keeping %d, ignoring %d", c.Field, c.Kept, c.Ignored)
}

// Merge folds other into m, field by field. Fields already set on m win;
// unset fields adopt other's value. Conflicting chip or sensor ids are
// not an error: m keeps its own id, the conflict is returned for the
// caller to log, and the Merged flag is latched.
func (m *DeviceMetadata) Merge(other *DeviceMetadata) []Conflict {
	if other == nil {
		return nil
	}

	conflicts := []Conflict{}

	if m.ChipID == nil {
		m.ChipID = copyIntPtr(other.ChipID)
	} else if other.ChipID != nil && *m.ChipID != *other.ChipID {
		conflicts = append(conflicts, Conflict{Field: "chip_id", Kept: *m.ChipID, Ignored: *other.ChipID})
	}

	if m.Sensors == nil {
		m.Sensors = map[string]SensorDescriptor{}
	}

	for _, key := range sortedChannels(other.Sensors) {
		theirs := other.Sensors[key]
		ours, ok := m.Sensors[key]
		if !ok {
			theirs.SensorID = copyIntPtr(theirs.SensorID)
			m.Sensors[key] = theirs
			continue
		}

		if ours.Type == "" {
			ours.Type = theirs.Type
		}
		if ours.SensorID == nil {
			ours.SensorID = copyIntPtr(theirs.SensorID)
		} else if theirs.SensorID != nil && *ours.SensorID != *theirs.SensorID {
			conflicts = append(conflicts, Conflict{
				Field:   fmt.Sprintf("sensors.%s.sensor_id", key),
				Kept:    *ours.SensorID,
				Ignored: *theirs.SensorID,
			})
		}
		m.Sensors[key] = ours
	}

	if m.Location.Lat == nil {
		m.Location.Lat = copyFloatPtr(other.Location.Lat)
	}
	if m.Location.Lon == nil {
		m.Location.Lon = copyFloatPtr(other.Location.Lon)
	}
	if m.Location.AMSL == nil {
		m.Location.AMSL = copyFloatPtr(other.Location.AMSL)
	}
	if m.Location.AGL == nil {
		m.Location.AGL = copyFloatPtr(other.Location.AGL)
	}

	if m.Owner.Name == "" {
		m.Owner.Name = other.Owner.Name
	}
	if m.Owner.Email == "" {
		m.Owner.Email = other.Owner.Email
	}
	if m.Owner.Phone == "" {
		m.Owner.Phone = other.Owner.Phone
	}

	if m.Name == "" {
		m.Name = other.Name
	}
	if m.Description == "" {
		m.Description = other.Description
	}

	if len(conflicts) > 0 || other.Merged {
		m.Merged = true
	}

	return conflicts
}

// MergeMetadata is the pure form of Merge: neither input is modified.
func MergeMetadata(a, b *DeviceMetadata) (*DeviceMetadata, []Conflict) {
	merged := a.Clone()
	conflicts := merged.Merge(b)
	return merged, conflicts
}

func (m *DeviceMetadata) Clone() *DeviceMetadata {
	clone := &DeviceMetadata{
		Name:        m.Name,
		ChipID:      copyIntPtr(m.ChipID),
		Sensors:     make(map[string]SensorDescriptor, len(m.Sensors)),
		Description: m.Description,
		Owner:       m.Owner,
		Merged:      m.Merged,
	}
	clone.Location = GPSCoordinate{
		Lat:  copyFloatPtr(m.Location.Lat),
		Lon:  copyFloatPtr(m.Location.Lon),
		AMSL: copyFloatPtr(m.Location.AMSL),
		AGL:  copyFloatPtr(m.Location.AGL),
	}
	for key, s := range m.Sensors {
		s.SensorID = copyIntPtr(s.SensorID)
		clone.Sensors[key] = s
	}
	return clone
}

// SensorIDs returns the distinct per-channel sensor ids attached to the
// device, in ascending order.
func (m *DeviceMetadata) SensorIDs() []int {
	seen := map[int]bool{}
	ids := []int{}
	for _, s := range m.Sensors {
		if s.SensorID != nil && !seen[*s.SensorID] {
			seen[*s.SensorID] = true
			ids = append(ids, *s.SensorID)
		}
	}
	sort.Ints(ids)
	return ids
}

func (m *DeviceMetadata) HasSensorID(id int) bool {
	for _, s := range m.Sensors {
		if s.SensorID != nil && *s.SensorID == id {
			return true
		}
	}
	return false
}

func (m *DeviceMetadata) Equal(other *DeviceMetadata) bool {
	if m == nil || other == nil {
		return m == other
	}
	if m.Name != other.Name ||
		m.Description != other.Description ||
		m.Owner != other.Owner ||
		m.Merged != other.Merged ||
		!intPtrEqual(m.ChipID, other.ChipID) ||
		!m.Location.Equal(other.Location) ||
		len(m.Sensors) != len(other.Sensors) {
		return false
	}
	for key, s := range m.Sensors {
		o, ok := other.Sensors[key]
		if !ok || s.Name != o.Name || s.Type != o.Type || !intPtrEqual(s.SensorID, o.SensorID) {
			return false
		}
	}
	return true
}

// Int and Float build pointers to literal values, for optional fields.
func Int(v int) *int { return &v }

func Float(v float64) *float64 { return &v }

func sortedChannels(sensors map[string]SensorDescriptor) []string {
	keys := make([]string, 0, len(sensors))
	for key := range sensors {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func copyIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyFloatPtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
