package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vasarhelyi/aqstat/domain"
	"github.com/vasarhelyi/aqstat/internal/pkg/application/aqdata"
	"github.com/vasarhelyi/aqstat/internal/pkg/application/collate"
	"github.com/vasarhelyi/aqstat/internal/pkg/infrastructure/sensorfiles"
)

var verbosity int

var rootCmd = &cobra.Command{
	Use:           "aqstat",
	Short:         "inspect, correlate and export air quality sensor archives",
	Version:       buildinfo.SourceVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		switch {
		case verbosity >= 2:
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		case verbosity == 1:
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		default:
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
		}
	},
}

func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase logging verbosity, repeatable")
	rootCmd.AddCommand(downloadCmd, convertCmd, statCmd, correlateCmd, exportCmd)
}

var (
	filterChipIDs      []int
	filterNames        []string
	filterExcludeNames []string
	filterGeoCenter    string
	filterGeoRadius    float64
	filterDateStart    string
	filterDateEnd      string
)

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().IntSliceVarP(&filterChipIDs, "chip-ids", "i", nil, "select devices by chip id")
	cmd.Flags().StringSliceVarP(&filterNames, "names", "n", nil, "select devices by display name substring")
	cmd.Flags().StringSliceVarP(&filterExcludeNames, "exclude-names", "x", nil, "drop devices by display name substring")
	cmd.Flags().StringVar(&filterGeoCenter, "geo-center", "", "keep devices near LAT,LON or near the named device")
	cmd.Flags().Float64Var(&filterGeoRadius, "geo-radius", 1000, "radius in metres around --geo-center")
	cmd.Flags().StringVar(&filterDateStart, "date-start", "", "ignore files before this day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&filterDateEnd, "date-end", "", "ignore files after this day (YYYY-MM-DD)")
}

func parseFilter() (collate.Filter, error) {
	filter := collate.Filter{
		ChipIDs:      filterChipIDs,
		Names:        filterNames,
		ExcludeNames: filterExcludeNames,
		GeoRadius:    filterGeoRadius,
	}

	if filterGeoCenter != "" {
		if lat, lon, ok := parseLatLon(filterGeoCenter); ok {
			filter.GeoCenter = &domain.GPSCoordinate{Lat: domain.Float(lat), Lon: domain.Float(lon)}
		} else {
			filter.GeoCenterName = filterGeoCenter
		}
	}

	if filterDateStart != "" {
		start, err := time.Parse(sensorfiles.DateLayout, filterDateStart)
		if err != nil {
			return filter, fmt.Errorf("failed to parse date %s: %s", filterDateStart, err.Error())
		}
		filter.DateStart = start
	}

	if filterDateEnd != "" {
		end, err := time.Parse(sensorfiles.DateLayout, filterDateEnd)
		if err != nil {
			return filter, fmt.Errorf("failed to parse date %s: %s", filterDateEnd, err.Error())
		}
		filter.DateEnd = end
	}

	return filter, nil
}

func parseLatLon(s string) (lat, lon float64, ok bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}

	lat, errLat := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lon, errLon := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errLat != nil || errLon != nil {
		return 0, 0, false
	}

	return lat, lon, true
}

func collectRecords(ctx context.Context, dir string) ([]*aqdata.SensorRecord, error) {
	filter, err := parseFilter()
	if err != nil {
		return nil, err
	}

	records, err := collate.Collect(ctx, dir, filter)
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, errors.New("no devices matched the given filters")
	}

	return records, nil
}
