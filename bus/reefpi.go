package bus

import (
	"fmt"

	"github.com/reef-pi/rpi/i2c"
)

// ReefPiBus adapts the bus handed to reef-pi drivers.
type ReefPiBus struct {
	Bus i2c.Bus
}

func ReefPi(b i2c.Bus) *ReefPiBus {
	return &ReefPiBus{Bus: b}
}

func OpenReefPi() (*ReefPiBus, error) {
	b, err := i2c.New()
	if err != nil {
		return nil, err
	}
	return ReefPi(b), nil
}

func (r *ReefPiBus) I2cWrite(addr byte, data ...byte) error {
	return r.Bus.WriteBytes(addr, data)
}

// I2cWriteRead uses a register read for single byte writes. Otherwise the write and the read
// are issued as two separate transfers.
func (r *ReefPiBus) I2cWriteRead(addr byte, out, in []byte) error {
	switch len(out) {
	case 0:
	case 1:
		return r.Bus.ReadFromReg(addr, out[0], in)
	default:
		if err := r.Bus.WriteBytes(addr, out); err != nil {
			return err
		}
	}
	if len(in) == 0 {
		return nil
	}
	data, err := r.Bus.ReadBytes(addr, len(in))
	if err != nil {
		return err
	}
	if len(data) != len(in) {
		return fmt.Errorf("Short I2C read from %#02x (%v instead of %v byte)", addr, len(data), len(in))
	}
	copy(in, data)
	return nil
}

func (r *ReefPiBus) Close() error {
	return r.Bus.Close()
}
