package reefpi

import (
	"fmt"

	"github.com/antongulenko/pca9685ctl/pca9685"
	"github.com/reef-pi/hal"
	log "github.com/sirupsen/logrus"
)

type channel struct {
	driver *driver
	ch     pca9685.Channel
	value  float64
}

func (c *channel) Name() string { return fmt.Sprintf("PCA9685:%d", c.ch) }
func (c *channel) Number() int  { return int(c.ch) }
func (c *channel) Close() error { return nil }

// Set takes the duty cycle in percent. 0 and 100 use the full-off and full-on flags.
func (c *channel) Set(value float64) error {
	if value < 0 || value > 100 {
		return fmt.Errorf("pca9685 channel %v: value %v out of range 0..100", c.ch, value)
	}
	dev := c.driver.dev
	var err error
	switch value {
	case 0:
		err = dev.SetChannelFullOff(c.ch)
	case 100:
		// Full off takes precedence and is only cleared by writing the OFF counter
		if err = dev.SetChannelOff(c.ch, 0); err == nil {
			err = dev.SetChannelFullOn(c.ch, 0)
		}
	default:
		on, off := pca9685.ValuesDelayed(0, value/100)
		err = dev.SetChannelOnOff(c.ch, on, off)
	}
	if err != nil {
		return err
	}
	if c.driver.debug {
		log.Printf("pca9685 addr=%#02x: set channel %v to %v%%", dev.Address(), c.ch, value)
	}
	c.value = value
	return nil
}

func (c *channel) Write(state bool) error {
	if state {
		return c.Set(100)
	}
	return c.Set(0)
}

func (c *channel) LastState() bool {
	return c.value > 0
}

type driver struct {
	meta     hal.Metadata
	dev      *pca9685.Device
	debug    bool
	channels []*channel
}

func newDriver(meta hal.Metadata, dev *pca9685.Device, debug bool) *driver {
	d := &driver{
		meta:  meta,
		dev:   dev,
		debug: debug,
	}
	for c := pca9685.C0; c < pca9685.All; c++ {
		d.channels = append(d.channels, &channel{driver: d, ch: c})
	}
	return d
}

func (d *driver) Metadata() hal.Metadata { return d.meta }

// Close switches all outputs off through the broadcast registers.
func (d *driver) Close() error {
	return d.dev.SetChannelFullOff(pca9685.All)
}

func (d *driver) PWMChannels() []hal.PWMChannel {
	res := make([]hal.PWMChannel, len(d.channels))
	for i, c := range d.channels {
		res[i] = c
	}
	return res
}

func (d *driver) PWMChannel(n int) (hal.PWMChannel, error) {
	if n < 0 || n >= len(d.channels) {
		return nil, fmt.Errorf("pca9685 addr=%#02x: invalid channel %d", d.dev.Address(), n)
	}
	return d.channels[n], nil
}

func (d *driver) DigitalOutputPins() []hal.DigitalOutputPin {
	res := make([]hal.DigitalOutputPin, len(d.channels))
	for i, c := range d.channels {
		res[i] = c
	}
	return res
}

func (d *driver) DigitalOutputPin(n int) (hal.DigitalOutputPin, error) {
	if n < 0 || n >= len(d.channels) {
		return nil, fmt.Errorf("pca9685 addr=%#02x: invalid pin %d", d.dev.Address(), n)
	}
	return d.channels[n], nil
}

func (d *driver) Pins(cap hal.Capability) ([]hal.Pin, error) {
	switch cap {
	case hal.PWM, hal.DigitalOutput:
		pins := make([]hal.Pin, len(d.channels))
		for i, c := range d.channels {
			pins[i] = c
		}
		return pins, nil
	default:
		return nil, fmt.Errorf("pca9685 addr=%#02x: unsupported capability: %s", d.dev.Address(), cap.String())
	}
}
