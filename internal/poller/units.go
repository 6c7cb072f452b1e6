package poller

import "math"

// adcMax is the full-scale value of the node's 12-bit moisture ADC.
const adcMax = 4095

// CelsiusToFahrenheit converts a cached Celsius value for redisplay.
func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// SoilPercentFromRaw converts a raw moisture ADC value to percent.
// The probe reads high when dry, so the scale is inverted.
func SoilPercentFromRaw(raw int) int {
	if raw < 0 {
		raw = 0
	}
	if raw > adcMax {
		raw = adcMax
	}
	return int(math.Round(float64(adcMax-raw) / adcMax * 100))
}
