package fiware

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	fw "github.com/diwise/context-broker/pkg/datamodels/fiware"
	"github.com/diwise/context-broker/pkg/ngsild/client"
	ngsierrors "github.com/diwise/context-broker/pkg/ngsild/errors"
	"github.com/diwise/context-broker/pkg/ngsild/types"
	"github.com/diwise/context-broker/pkg/ngsild/types/entities"
	. "github.com/diwise/context-broker/pkg/ngsild/types/entities/decorators"
	"github.com/diwise/context-broker/pkg/ngsild/types/properties"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/vasarhelyi/aqstat/internal/pkg/application/aqdata"
	"github.com/vasarhelyi/aqstat/internal/pkg/application/timeseries"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("aqstat/fiware")

// airQualityAttributes maps table columns to AirQualityObserved attribute
// names and UN/CEFACT unit codes. Earlier entries win when two columns
// target the same attribute, so the calibrated PM2.5 reading is preferred
// over the raw one.
var airQualityAttributes = []struct {
	column string
	name   string
	unit   string
}{
	{aqdata.ColumnPM10, "PM10", "GQ"},
	{aqdata.ColumnPM25Calib, "PM25", "GQ"},
	{aqdata.ColumnPM25, "PM25", "GQ"},
	{aqdata.ColumnTemperature, "temperature", "CEL"},
	{aqdata.ColumnHumidity, "relativeHumidity", "P1"},
	{aqdata.ColumnPressure, "atmosphericPressure", "PAL"},
}

// CreateOrUpdateAirQualityObserved publishes the most recent observation
// of one device as an NGSI-LD AirQualityObserved entity. A merge is
// attempted first, entities unknown to the broker are created instead.
func CreateOrUpdateAirQualityObserved(ctx context.Context, cbClient client.ContextBrokerClient, record *aqdata.SensorRecord) error {
	var err error

	ctx, span := tracer.Start(ctx, "create-air-quality")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	_, ctx, logger := o11y.AddTraceIDToLoggerAndStoreInContext(span, logging.GetFromContext(ctx), ctx)

	if record.Data.IsEmpty() {
		err = fmt.Errorf("device %s has no observations to export", record.Label())
		return err
	}

	headers := map[string][]string{"Content-Type": {"application/ld+json"}}

	last := record.Data.Len() - 1
	observedAt := record.Data.At(last).UTC().Format(time.RFC3339)

	decorators := []entities.EntityDecoratorFunc{
		entities.DefaultContext(),
		DateTime(properties.DateObserved, observedAt),
	}

	if record.Metadata.Name != "" {
		decorators = append(decorators, Text("areaServed", record.Metadata.Name))
	}

	if record.Metadata.Location.HasPosition() {
		decorators = append(decorators, Location(*record.Metadata.Location.Lat, *record.Metadata.Location.Lon))
	}

	decorators = append(decorators, readingsFromRow(record.Data, last, observedAt)...)

	var fragment types.EntityFragment
	fragment, err = entities.NewFragment(decorators...)
	if err != nil {
		err = fmt.Errorf("failed to create entity fragment: %s", err.Error())
		return err
	}

	entityID := airQualityEntityID(record)

	_, err = cbClient.MergeEntity(ctx, entityID, fragment, headers)
	if err != nil {
		if !errors.Is(err, ngsierrors.ErrNotFound) {
			logger.Error().Err(err).Msg("failed to merge entity")
			err = fmt.Errorf("failed to merge entity %s: %s", entityID, err.Error())
			return err
		}

		var entity types.Entity
		entity, err = entities.New(entityID, fw.AirQualityObservedTypeName, decorators...)
		if err != nil {
			err = fmt.Errorf("failed to create new entity: %s", err.Error())
			return err
		}

		_, err = cbClient.CreateEntity(ctx, entity, headers)
		if err != nil {
			err = fmt.Errorf("failed to post entity to context broker: %s", err.Error())
			return err
		}

		logger.Info().Msgf("created entity %s", entityID)
	} else {
		logger.Info().Msgf("updated entity %s", entityID)
	}

	return nil
}

func readingsFromRow(data *timeseries.Table, i int, observedAt string) []entities.EntityDecoratorFunc {
	readings := []entities.EntityDecoratorFunc{}
	exported := map[string]bool{}

	for _, attr := range airQualityAttributes {
		if exported[attr.name] || !data.HasColumn(attr.column) {
			continue
		}

		v := data.Value(attr.column, i)
		if math.IsNaN(v) {
			continue
		}

		exported[attr.name] = true
		readings = append(readings, Number(
			attr.name,
			v,
			properties.UnitCode(attr.unit),
			properties.ObservedAt(observedAt),
		))
	}

	return readings
}

func airQualityEntityID(record *aqdata.SensorRecord) string {
	if record.Metadata.ChipID != nil {
		return fw.AirQualityObservedIDPrefix + strconv.Itoa(*record.Metadata.ChipID)
	}

	return fw.AirQualityObservedIDPrefix + record.Label()
}
