package bus

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// I2cBus is the transport consumed by the device drivers. The first data byte of a
// write is conventionally the starting register of the target device.
type I2cBus interface {
	I2cWrite(addr byte, data ...byte) error
	I2cWriteRead(addr byte, out, in []byte) error
}

const (
	ScanFirstAddress = byte(0x08)
	ScanLastAddress  = byte(0x77)
)

// Scan probes every non-reserved 7 bit address with a one byte read and
// returns the addresses that acknowledged. Failed reads only mean absent devices.
func Scan(bus I2cBus) []byte {
	var found []byte
	buf := make([]byte, 1)
	for addr := ScanFirstAddress; addr <= ScanLastAddress; addr++ {
		if err := bus.I2cWriteRead(addr, nil, buf); err != nil {
			log.Debugf("No response from I2C address %#02x: %v", addr, err)
			continue
		}
		found = append(found, addr)
	}
	return found
}

// Dummy does not talk to any hardware. It logs every transaction, reads return zeros.
type Dummy struct {
	// Addresses answered by Scan. All other addresses fail reads.
	Present []byte
}

func (d *Dummy) I2cWrite(addr byte, data ...byte) error {
	log.Printf("Dummy I2C write to %#02x: %#02v", addr, data)
	return nil
}

func (d *Dummy) I2cWriteRead(addr byte, out, in []byte) error {
	if len(out) == 0 && d.Present != nil && !d.present(addr) {
		return errNoAck(addr)
	}
	for i := range in {
		in[i] = 0
	}
	log.Printf("Dummy I2C write/read at %#02x: wrote %#02v, read %v byte(s)", addr, out, len(in))
	return nil
}

func (d *Dummy) present(addr byte) bool {
	for _, p := range d.Present {
		if p == addr {
			return true
		}
	}
	return false
}

func errNoAck(addr byte) error {
	return fmt.Errorf("No acknowledgement from I2C address %#02x", addr)
}
