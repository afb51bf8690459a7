package fiware

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	fw "github.com/diwise/context-broker/pkg/datamodels/fiware"
	"github.com/diwise/context-broker/pkg/ngsild/types/entities"
	"github.com/matryer/is"
	"github.com/vasarhelyi/aqstat/domain"
	"github.com/vasarhelyi/aqstat/internal/pkg/application/aqdata"
)

func TestThatTheLatestRowBecomesEntityAttributes(t *testing.T) {
	is := is.New(t)

	record := aqdata.NewSensorRecord()
	record.Metadata.ChipID = domain.Int(11797099)

	ts := time.Date(2020, time.January, 10, 12, 0, 0, 0, time.UTC)
	record.Data.AppendRow(ts.Add(-time.Hour), map[string]float64{
		aqdata.ColumnPM10:        40,
		aqdata.ColumnPM25:        20,
		aqdata.ColumnPM25Calib:   23,
		aqdata.ColumnTemperature: 4.5,
	})
	record.Data.AppendRow(ts, map[string]float64{
		aqdata.ColumnPM10:      21.25,
		aqdata.ColumnPM25:      10,
		aqdata.ColumnPM25Calib: 11.5,
	})

	body := marshalLatestRow(t, record)

	is.True(strings.Contains(body, `"PM10"`))
	is.True(strings.Contains(body, "21.25"))
	is.True(strings.Contains(body, `"PM25"`))
	is.True(strings.Contains(body, "11.5"))           // the calibrated PM2.5 reading wins
	is.True(!strings.Contains(body, `"value":10,`))   // the raw one is not exported alongside it
	is.True(!strings.Contains(body, `"temperature"`)) // missing in the latest row
}

func TestThatRawPM25IsExportedWhenNoCalibrationExists(t *testing.T) {
	is := is.New(t)

	record := aqdata.NewSensorRecord()

	ts := time.Date(2020, time.January, 10, 12, 0, 0, 0, time.UTC)
	record.Data.AppendRow(ts, map[string]float64{
		aqdata.ColumnPM10: 18.5,
		aqdata.ColumnPM25: 9.25,
	})

	body := marshalLatestRow(t, record)

	is.True(strings.Contains(body, `"PM25"`))
	is.True(strings.Contains(body, "9.25"))
}

func TestThatTheEntityIDPrefersTheChipID(t *testing.T) {
	is := is.New(t)

	record := aqdata.NewSensorRecord()
	record.Metadata.Name = "szeged-tarjan"
	record.Metadata.ChipID = domain.Int(11797099)

	is.Equal(airQualityEntityID(record), fw.AirQualityObservedIDPrefix+"11797099")

	record.Metadata.ChipID = nil
	is.Equal(airQualityEntityID(record), fw.AirQualityObservedIDPrefix+"szeged-tarjan")
}

func marshalLatestRow(t *testing.T, record *aqdata.SensorRecord) string {
	t.Helper()
	is := is.New(t)

	last := record.Data.Len() - 1
	observedAt := record.Data.At(last).UTC().Format(time.RFC3339)

	decorators := append(
		[]entities.EntityDecoratorFunc{entities.DefaultContext()},
		readingsFromRow(record.Data, last, observedAt)...,
	)

	fragment, err := entities.NewFragment(decorators...)
	is.NoErr(err)

	body, err := json.Marshal(fragment)
	is.NoErr(err)

	return string(body)
}
