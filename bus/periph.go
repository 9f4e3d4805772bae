package bus

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// PeriphBus drives a bus through periph.io, e.g. /dev/i2c-N on a Raspberry Pi.
type PeriphBus struct {
	Bus i2c.Bus
}

func Periph(b i2c.Bus) *PeriphBus {
	return &PeriphBus{Bus: b}
}

// OpenPeriph initializes the periph host drivers and opens the named bus.
// An empty name opens the first available bus.
func OpenPeriph(name string) (*PeriphBus, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("Failed to initialize periph host drivers: %v", err)
	}
	b, err := i2creg.Open(name)
	if err != nil {
		return nil, err
	}
	return Periph(b), nil
}

func (p *PeriphBus) I2cWrite(addr byte, data ...byte) error {
	return p.Bus.Tx(uint16(addr), data, nil)
}

func (p *PeriphBus) I2cWriteRead(addr byte, out, in []byte) error {
	return p.Bus.Tx(uint16(addr), out, in)
}

func (p *PeriphBus) Close() error {
	if closer, ok := p.Bus.(i2c.BusCloser); ok {
		return closer.Close()
	}
	return nil
}

func (p *PeriphBus) String() string {
	return p.Bus.String()
}
