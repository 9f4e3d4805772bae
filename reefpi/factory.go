package reefpi

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/antongulenko/pca9685ctl/bus"
	"github.com/antongulenko/pca9685ctl/pca9685"
	"github.com/reef-pi/hal"
	"github.com/reef-pi/rpi/i2c"
	log "github.com/sirupsen/logrus"
)

const (
	paramAddress = "Address"
	paramDebug   = "Debug"
)

type factory struct {
	meta       hal.Metadata
	parameters []hal.ConfigParameter
}

var (
	f    *factory
	once sync.Once
)

// Factory returns the reef-pi driver factory for PCA9685 PWM controllers.
func Factory() hal.DriverFactory {
	once.Do(func() {
		f = &factory{
			meta: hal.Metadata{
				Name:        "pca9685",
				Description: "PCA9685 16 channel I2C PWM controller",
				Capabilities: []hal.Capability{
					hal.PWM,
					hal.DigitalOutput,
				},
			},
			parameters: []hal.ConfigParameter{
				{Name: paramAddress, Type: hal.String, Order: 0, Default: fmt.Sprintf("%#02x", pca9685.ADDRESS)},
				{Name: paramDebug, Type: hal.Boolean, Order: 1, Default: false},
			},
		}
	})
	return f
}

func (f *factory) Metadata() hal.Metadata               { return f.meta }
func (f *factory) GetParameters() []hal.ConfigParameter { return f.parameters }

// parseAddr accepts "0x40" style hex or "64" style decimal.
func parseAddr(s string) (byte, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, errors.New("empty address")
	}
	base := 10
	if strings.HasPrefix(s, "0x") {
		s, base = s[2:], 16
	}
	v, err := strconv.ParseUint(s, base, 8)
	if err != nil {
		return 0, err
	}
	if byte(v) > pca9685.ADDRESS_MAX {
		return 0, fmt.Errorf("address %#02x is not a 7 bit address", v)
	}
	return byte(v), nil
}

func (f *factory) ValidateParameters(params map[string]interface{}) (bool, map[string][]string) {
	errs := make(map[string][]string)

	if v, ok := params[paramAddress]; !ok {
		errs[paramAddress] = append(errs[paramAddress], "is required (e.g. 0x40)")
	} else if s, ok := v.(string); !ok {
		errs[paramAddress] = append(errs[paramAddress], "must be a string like 0x40")
	} else if _, err := parseAddr(s); err != nil {
		errs[paramAddress] = append(errs[paramAddress], "must be a valid 7 bit I2C address: "+err.Error())
	}

	if v, ok := params[paramDebug]; ok {
		if _, ok := v.(bool); !ok {
			errs[paramDebug] = append(errs[paramDebug], "must be boolean")
		}
	}

	if len(errs) > 0 {
		return false, errs
	}
	return true, nil
}

func (f *factory) NewDriver(params map[string]interface{}, b interface{}) (hal.Driver, error) {
	if ok, failures := f.ValidateParameters(params); !ok {
		return nil, errors.New(hal.ToErrorString(failures))
	}
	i2cBus, ok := b.(i2c.Bus)
	if !ok {
		return nil, fmt.Errorf("pca9685: expected i2c.Bus, got %T", b)
	}
	addr, _ := parseAddr(params[paramAddress].(string))
	debug, _ := params[paramDebug].(bool)
	if debug {
		log.Printf("pca9685: creating reef-pi driver at %#02x", addr)
	}
	return newDriver(f.meta, pca9685.New(bus.ReefPi(i2cBus), addr), debug), nil
}
