package sensorfiles

import (
	"testing"

	"github.com/matryer/is"
)

func TestThatAParticulateFileYieldsTheAdjacentClimateSensor(t *testing.T) {
	is := is.New(t)

	path := writeFixture(t, "2020-01-12_sds011_sensor_35233.csv", communitySDS011Sample)
	m, err := ConvertToMetadata(path)

	is.NoErr(err)
	is.Equal(*m.Sensors["pm10"].SensorID, 35233)
	is.Equal(*m.Sensors["pm2_5"].SensorID, 35233)
	is.Equal(m.Sensors["pm10"].Type, "SDS011")
	is.Equal(*m.Sensors["temperature"].SensorID, 35234) // registered right after the particulate sensor
	is.Equal(*m.Sensors["humidity"].SensorID, 35234)
	is.Equal(m.Sensors["temperature"].Type, "DHT22")
	is.Equal(*m.Location.Lat, 46.253)
	is.Equal(*m.Location.Lon, 20.148)
}

func TestThatAClimateFileYieldsTheAdjacentParticulateSensor(t *testing.T) {
	is := is.New(t)

	path := writeFixture(t, "2020-01-12_dht22_sensor_35234.csv", communityDHT22Sample)
	m, err := ConvertToMetadata(path)

	is.NoErr(err)
	is.Equal(*m.Sensors["temperature"].SensorID, 35234)
	is.Equal(m.Sensors["temperature"].Type, "DHT22")
	is.Equal(*m.Sensors["pm10"].SensorID, 35233)
	is.Equal(m.Sensors["pm10"].Type, "SDS011")
	is.True(m.ChipID == nil) // community files know nothing about the chip
}

func TestThatAMadaviFileCannotBeConverted(t *testing.T) {
	is := is.New(t)

	path := writeFixture(t, "data-esp8266-11797099-2020-01-10.csv", madaviSample)
	_, err := ConvertToMetadata(path)

	is.True(err != nil)
}
