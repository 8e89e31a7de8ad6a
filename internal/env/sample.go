package env

// Measurement is a single reading of the environmental sensor, taken fresh
// on every tick.
type Measurement struct {
	Temperature float64 `json:"temp_c"`       // °C
	Pressure    float64 `json:"pressure_hpa"` // hPa
	Humidity    float64 `json:"humidity_rh"`  // %RH
}
