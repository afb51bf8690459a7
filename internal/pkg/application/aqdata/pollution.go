package aqdata

import "github.com/vasarhelyi/aqstat/internal/pkg/application/stats"

// Daily health limits for particulate matter in µg/m³, as used by the
// European air quality directive.
const (
	PM10DailyLimit = 50.0
	PM25DailyLimit = 25.0
)

// PollutionSummary counts the days on which a device's daily mean
// particulate readings exceeded the health limits, at one, one and a
// half and two times the pm10 limit and at one and two times the pm2.5
// limit.
type PollutionSummary struct {
	Days         int
	PM10Above1x  int
	PM10Above15x int
	PM10Above2x  int
	PM25Above1x  int
	PM25Above2x  int
}

// Pollution reduces the record's measurements to daily means and counts
// the exceedance days per limit.
func (r *SensorRecord) Pollution() PollutionSummary {
	daily := stats.DailyAverage(r.Data)
	return PollutionSummary{
		Days:         daily.Len(),
		PM10Above1x:  stats.CountDaysAbove(daily, ColumnPM10, PM10DailyLimit),
		PM10Above15x: stats.CountDaysAbove(daily, ColumnPM10, 1.5*PM10DailyLimit),
		PM10Above2x:  stats.CountDaysAbove(daily, ColumnPM10, 2*PM10DailyLimit),
		PM25Above1x:  stats.CountDaysAbove(daily, ColumnPM25, PM25DailyLimit),
		PM25Above2x:  stats.CountDaysAbove(daily, ColumnPM25, 2*PM25DailyLimit),
	}
}
