package sensors

import (
	"fmt"
	"math"

	"github.com/relabs-tech/env_telemetry/internal/env"
	logger "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/bmxx80"
	"periph.io/x/host/v3"
)

// EnvReader is anything that returns a fresh environmental measurement.
type EnvReader interface {
	Read() (env.Measurement, error)
}

// BusError is a communication fault on the sensor bus. It is never turned
// into a zero reading.
type BusError struct {
	Op  string
	Err error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("env sensor %s: %v", e.Op, e.Err)
}

func (e *BusError) Unwrap() error { return e.Err }

// BME280Config locates the sensor on the I²C bus.
type BME280Config struct {
	Bus     string // "" opens the first available bus
	Address uint16 // 0x76 or 0x77
}

type envDevice interface {
	Sense(e *physic.Env) error
	Halt() error
}

// BME280 reads temperature, pressure and humidity from a Bosch BME280.
type BME280 struct {
	dev envDevice
	bus i2c.BusCloser
}

// OpenBME280 initialises periph, opens the bus and probes the sensor.
func OpenBME280(cfg BME280Config) (*BME280, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}

	bus, err := i2creg.Open(cfg.Bus)
	if err != nil {
		return nil, &BusError{Op: "open i2c", Err: err}
	}

	logger.Infof("Starting BME280 reader [%x]", cfg.Address)
	dev, err := bmxx80.NewI2C(bus, cfg.Address, &bmxx80.DefaultOpts)
	if err != nil {
		_ = bus.Close()
		return nil, &BusError{Op: "init bme280", Err: err}
	}

	return &BME280{dev: dev, bus: bus}, nil
}

// Read blocks for one forced measurement.
func (b *BME280) Read() (env.Measurement, error) {
	var e physic.Env
	if err := b.dev.Sense(&e); err != nil {
		return env.Measurement{}, &BusError{Op: "sense", Err: err}
	}
	return fromPhysic(e), nil
}

func (b *BME280) Close() error {
	var err error
	if b.dev != nil {
		err = b.dev.Halt()
	}
	if b.bus != nil {
		if cerr := b.bus.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func fromPhysic(e physic.Env) env.Measurement {
	return env.Measurement{
		Temperature: round2(float64(e.Temperature-physic.ZeroCelsius) / float64(physic.Celsius)),
		Pressure:    round2(float64(e.Pressure) / float64(100*physic.Pascal)),
		Humidity:    round2(float64(e.Humidity) / float64(physic.PercentRH)),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
