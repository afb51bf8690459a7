package lwm2m

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/farshidtz/senml/v2"
	"github.com/rs/zerolog"
	"github.com/vasarhelyi/aqstat/internal/pkg/application/aqdata"
	"github.com/vasarhelyi/aqstat/internal/pkg/application/timeseries"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
)

var tlsSkipVerify bool

func init() {
	tlsSkipVerify = env.GetVariableOrDefault(zerolog.Logger{}, "TLS_SKIP_VERIFY", "0") == "1"
}

var tracer = otel.Tracer("aqstat/lwm2m")

const (
	AirQualityURN  string = "urn:oma:lwm2m:ext:3428"
	HumidityURN    string = "urn:oma:lwm2m:ext:3304"
	TemperatureURN string = "urn:oma:lwm2m:ext:3303"
	PressureURN    string = "urn:oma:lwm2m:ext:3323"
)

// CreateAndSendAsLWM2M converts the most recent observation of one device
// into SenML packs, one per lwm2m object, and hands each pack to sender.
// The calibrated PM2.5 reading is preferred over the raw one.
func CreateAndSendAsLWM2M(ctx context.Context, record *aqdata.SensorRecord, url string, sender SenderFunc) error {
	logger := logging.GetFromContext(ctx)

	if record.Data.IsEmpty() {
		return fmt.Errorf("device %s has no observations to export", record.Label())
	}

	deviceID := lwm2mDeviceID(record)
	log := logger.With().Str("device_id", deviceID).Logger()

	last := record.Data.Len() - 1
	timestamp := record.Data.At(last)

	packs := make(map[string]senml.Pack)

	if v, ok := reading(record.Data, aqdata.ColumnTemperature, last); ok {
		packs[TemperatureURN] = newPack(TemperatureURN, "5700", deviceID, v, senml.UnitCelsius, timestamp, timestamp)
	}

	if v, ok := reading(record.Data, aqdata.ColumnHumidity, last); ok {
		packs[HumidityURN] = newPack(HumidityURN, "5700", deviceID, v, senml.UnitRelativeHumidity, timestamp, timestamp)
	}

	if v, ok := reading(record.Data, aqdata.ColumnPressure, last); ok {
		packs[PressureURN] = newPack(PressureURN, "5700", deviceID, v, "Pa", timestamp, timestamp)
	}

	if v, ok := reading(record.Data, aqdata.ColumnPM10, last); ok {
		packs[AirQualityURN] = newPack(AirQualityURN, "1", deviceID, v, "ug/m3", timestamp, timestamp)
	}

	if v, ok := pm25Reading(record.Data, last); ok {
		if _, exists := packs[AirQualityURN]; !exists {
			packs[AirQualityURN] = newPack(AirQualityURN, "3", deviceID, v, "ug/m3", timestamp, timestamp)
		} else {
			packs[AirQualityURN] = append(packs[AirQualityURN], newRec("3", v, "ug/m3", timestamp))
		}
	}

	var errs []error

	for _, p := range packs {
		err := sender(ctx, url, p)
		if err != nil {
			log.Error().Err(err).Msg("could not send pack")
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func reading(data *timeseries.Table, column string, i int) (float64, bool) {
	if !data.HasColumn(column) {
		return 0, false
	}

	v := data.Value(column, i)
	if math.IsNaN(v) {
		return 0, false
	}

	return v, true
}

func pm25Reading(data *timeseries.Table, i int) (float64, bool) {
	if v, ok := reading(data, aqdata.ColumnPM25Calib, i); ok {
		return v, ok
	}

	return reading(data, aqdata.ColumnPM25, i)
}

func lwm2mDeviceID(record *aqdata.SensorRecord) string {
	if record.Metadata.ChipID != nil {
		return strconv.Itoa(*record.Metadata.ChipID)
	}

	return record.Label()
}

func newPack(baseName, name, id string, v float64, u string, bt, t time.Time) senml.Pack {
	p := senml.Pack{
		senml.Record{
			BaseName:    baseName,
			BaseTime:    float64(bt.Unix()),
			Name:        "0",
			StringValue: id,
		},
		newRec(name, v, u, t),
	}
	return p
}

func newRec(name string, v float64, u string, t time.Time) senml.Record {
	return senml.Record{
		Name:  name,
		Value: &v,
		Time:  float64(t.Unix()),
		Unit:  u,
	}
}

type SenderFunc = func(context.Context, string, senml.Pack) error

func Send(ctx context.Context, url string, pack senml.Pack) error {
	var err error

	ctx, span := tracer.Start(ctx, "send-object")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	var httpClient http.Client

	if tlsSkipVerify {
		customTransport := http.DefaultTransport.(*http.Transport).Clone()
		customTransport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		httpClient = http.Client{
			Transport: otelhttp.NewTransport(customTransport),
		}
	} else {
		httpClient = http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	b, err := json.Marshal(pack)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(b))
	if err != nil {
		return err
	}

	req.Header.Add("Content-Type", "application/senml+json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	} else if resp.StatusCode != http.StatusCreated {
		err = fmt.Errorf("unexpected response code %d", resp.StatusCode)
	}

	return err
}
