package pca9685

import (
	"errors"

	"github.com/antongulenko/pca9685ctl/bus"
)

var (
	ErrInvalidInputData = errors.New("pca9685: invalid input data")
	ErrInvalidChannel   = errors.New("pca9685: invalid channel")
)

// Device addresses one PCA9685 on a bus. It does no locking: concurrent users must
// serialize their calls, e.g. through a bus.Sequencer.
type Device struct {
	bus     bus.I2cBus
	address byte

	// MODE1 bits written when enabling auto increment.
	Mode1 byte
}

func New(b bus.I2cBus, address byte) *Device {
	return &Device{
		bus:     b,
		address: address,
		Mode1:   MODE1_ALLCALL,
	}
}

func (d *Device) Address() byte {
	return d.address
}

// EnableAutoIncrement writes MODE1 with the AI bit set. The write is issued on every call,
// the state of the device is not tracked.
func (d *Device) EnableAutoIncrement() error {
	return d.bus.I2cWrite(d.address, MODE1, d.Mode1|MODE1_AI)
}

// SetChannelOn sets the ON counter of the channel.
// The full off setting takes precedence over the ON settings (datasheet section 7.3.3).
func (d *Device) SetChannelOn(channel Channel, value uint16) error {
	if err := checkInputs(channel, value); err != nil {
		return err
	}
	return d.writeDoubleRegister(OnRegister(channel), value)
}

// SetChannelOff sets the OFF counter of the channel. This also clears the full off flag.
func (d *Device) SetChannelOff(channel Channel, value uint16) error {
	if err := checkInputs(channel, value); err != nil {
		return err
	}
	return d.writeDoubleRegister(OffRegister(channel), value)
}

// SetChannelOnOff writes both counters of the channel in one transaction.
func (d *Device) SetChannelOnOff(channel Channel, on, off uint16) error {
	if err := checkInputs(channel, on, off); err != nil {
		return err
	}
	onL, onH := EncodeCounter(on)
	offL, offH := EncodeCounter(off)
	return d.bus.I2cWrite(d.address, OnRegister(channel), onL, onH, offL, offH)
}

// SetChannelFullOn sets the channel always on. The value is kept in the counter bits next to
// the full-on flag, which delays the turning on. Full off still takes precedence.
func (d *Device) SetChannelFullOn(channel Channel, value uint16) error {
	if err := checkInputs(channel, value); err != nil {
		return err
	}
	return d.writeDoubleRegister(OnRegister(channel), value|FULL_BIT)
}

// SetChannelFullOff sets the channel always off, overriding the ON settings.
// It is cleared by writing the OFF counter, e.g. with SetChannelOff.
func (d *Device) SetChannelFullOff(channel Channel) error {
	if !channel.Valid() {
		return ErrInvalidChannel
	}
	return d.writeDoubleRegister(OffRegister(channel), FULL_BIT)
}

// SetAllOnOff sets the ON and OFF counters of all 16 channels in one transaction.
// The array index is the channel number. All values are checked before anything is written.
func (d *Device) SetAllOnOff(on, off [NumChannels]uint16) error {
	data := make([]byte, 1+BYTE_PER_OUTPUT*NumChannels)
	data[0] = LED0_ON_L
	for i := 0; i < NumChannels; i++ {
		if on[i] > TIMER_MAX || off[i] > TIMER_MAX {
			return ErrInvalidInputData
		}
		target := data[1+i*BYTE_PER_OUTPUT:]
		target[0], target[1] = EncodeCounter(on[i])
		target[2], target[3] = EncodeCounter(off[i])
	}
	if err := d.EnableAutoIncrement(); err != nil {
		return err
	}
	return d.bus.I2cWrite(d.address, data...)
}

type ChannelState struct {
	On      uint16
	Off     uint16
	FullOn  bool
	FullOff bool
}

// ReadChannel reads back the four registers of a channel. The All registers read as zero on the device.
func (d *Device) ReadChannel(channel Channel) (state ChannelState, err error) {
	if !channel.Valid() {
		return state, ErrInvalidChannel
	}
	data := make([]byte, BYTE_PER_OUTPUT)
	if err = d.bus.I2cWriteRead(d.address, []byte{OnRegister(channel)}, data); err != nil {
		return
	}
	state.On, state.FullOn = DecodeCounter(data[0], data[1])
	state.Off, state.FullOff = DecodeCounter(data[2], data[3])
	return
}

func (d *Device) writeDoubleRegister(register byte, word uint16) error {
	low, high := EncodeCounter(word)
	return d.bus.I2cWrite(d.address, register, low, high)
}

func checkInputs(channel Channel, values ...uint16) error {
	if !channel.Valid() {
		return ErrInvalidChannel
	}
	for _, val := range values {
		if err := CheckCounter(val); err != nil {
			return err
		}
	}
	return nil
}
