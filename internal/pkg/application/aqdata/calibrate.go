package aqdata

import "math"

// Calibration corrects a raw pm2.5 reading using the simultaneous
// pm10/pm2.5 ratio: pm2_5 / (slope*ln(ratio) + intercept). Ratios above
// MaxRatio are outside the fitted range and yield no calibrated value;
// the boundary itself is still within range.
type Calibration struct {
	Slope     float64
	Intercept float64
	MaxRatio  float64
}

// SDS011Calibration is the empirical correction for the SDS011 optical
// particle sensor, fitted against a reference instrument.
var SDS011Calibration = Calibration{Slope: -0.509, Intercept: 1.2203, MaxRatio: 8}

// Calibrate recomputes the ratio and calibrated pm2.5 columns from the
// raw particulate readings. Derived columns are overwritten in place, so
// calibrating twice has no further effect. Rows where the ratio cannot
// be formed (missing values, pm2.5 of zero) keep both derived values
// missing.
func (r *SensorRecord) Calibrate(c Calibration) {
	n := r.Data.Len()
	pm10 := r.Data.Column(ColumnPM10)
	pm25 := r.Data.Column(ColumnPM25)

	ratio := make([]float64, n)
	calib := make([]float64, n)
	for i := 0; i < n; i++ {
		ratio[i] = math.NaN()
		calib[i] = math.NaN()
		if pm10 == nil || pm25 == nil {
			continue
		}

		v := pm10[i] / pm25[i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		ratio[i] = v

		if v > c.MaxRatio {
			continue
		}
		calib[i] = pm25[i] / (c.Slope*math.Log(v) + c.Intercept)
	}

	r.Data.SetColumn(ColumnPMRatio, ratio)
	r.Data.SetColumn(ColumnPM25Calib, calib)
}
