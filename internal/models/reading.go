package models

import "time"

// Reading is one row in the telemetry ledger. Rows are append-only: the
// ledger assigns ID and CapturedAt at insert time and nothing updates or
// deletes a row afterwards.
//
// Every channel is a pointer because the sensor node reports whatever it
// managed to measure this cycle. A nil channel means "not measured",
// which is distinct from zero.
type Reading struct {
	ID         int64     `json:"id"`
	CapturedAt time.Time `json:"timestamp"`

	Temperature  *float64 `json:"temperature"`
	Humidity     *float64 `json:"humidity"`
	MQ135Raw     *int     `json:"mq135_raw"`
	MQ135Voltage *float64 `json:"mq135_voltage"`
	CO2PPM       *float64 `json:"co2_ppm"`
	NH4PPM       *float64 `json:"nh4_ppm"`
	AlcoholPPM   *float64 `json:"alcohol_ppm"`
	COPPM        *float64 `json:"co_ppm"`
	AcetonePPM   *float64 `json:"acetone_ppm"`
	SoilRaw      *int     `json:"soil_raw"`
	SoilPercent  *int     `json:"soil_percent"`

	MotionDetected *bool `json:"motion_detected"`

	// RelayOn and LedOn are echo fields: the actuator states the node
	// reports it was actually running at capture time. They may lag the
	// control-state store by one device poll interval.
	RelayOn *bool `json:"relay_on"`
	LedOn   *bool `json:"led_on"`
}

// HasData reports whether at least one channel carries a value.
func (r *Reading) HasData() bool {
	return r.Temperature != nil || r.Humidity != nil ||
		r.MQ135Raw != nil || r.MQ135Voltage != nil ||
		r.CO2PPM != nil || r.NH4PPM != nil || r.AlcoholPPM != nil ||
		r.COPPM != nil || r.AcetonePPM != nil ||
		r.SoilRaw != nil || r.SoilPercent != nil ||
		r.MotionDetected != nil || r.RelayOn != nil || r.LedOn != nil
}
