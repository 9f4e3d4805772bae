package reefpi

import (
	"testing"

	"github.com/antongulenko/pca9685ctl/pca9685"
	"github.com/reef-pi/hal"
	"github.com/reef-pi/rpi/i2c"
	"github.com/stretchr/testify/require"
)

type write struct {
	addr byte
	data []byte
}

type fakeBus struct {
	writes []write
	closed bool
}

var _ i2c.Bus = (*fakeBus)(nil)

func (b *fakeBus) SetAddress(addr byte) error {
	return nil
}

func (b *fakeBus) ReadBytes(addr byte, num int) ([]byte, error) {
	return make([]byte, num), nil
}

func (b *fakeBus) WriteBytes(addr byte, value []byte) error {
	b.writes = append(b.writes, write{addr, append([]byte(nil), value...)})
	return nil
}

func (b *fakeBus) ReadFromReg(addr, reg byte, value []byte) error {
	return nil
}

func (b *fakeBus) WriteToReg(addr, reg byte, value []byte) error {
	return b.WriteBytes(addr, append([]byte{reg}, value...))
}

func (b *fakeBus) Close() error {
	b.closed = true
	return nil
}

func newTestDriver(t *testing.T) (*fakeBus, hal.Driver) {
	b := new(fakeBus)
	d, err := Factory().NewDriver(map[string]interface{}{
		paramAddress: "0x41",
		paramDebug:   true,
	}, b)
	require.NoError(t, err)
	return b, d
}

func TestFactoryMetadata(t *testing.T) {
	r := require.New(t)
	meta := Factory().Metadata()
	r.Equal("pca9685", meta.Name)
	r.Contains(meta.Capabilities, hal.PWM)
	r.Len(Factory().GetParameters(), 2)
	r.Equal("0x40", Factory().GetParameters()[0].Default)
}

func TestValidateParameters(t *testing.T) {
	r := require.New(t)
	ok, failures := Factory().ValidateParameters(map[string]interface{}{paramAddress: "0x40"})
	r.True(ok)
	r.Empty(failures)

	ok, _ = Factory().ValidateParameters(map[string]interface{}{paramAddress: "64", paramDebug: false})
	r.True(ok)

	for _, params := range []map[string]interface{}{
		{},
		{paramAddress: 64},
		{paramAddress: "0x80"},
		{paramAddress: "zz"},
		{paramAddress: "0x40", paramDebug: "yes"},
	} {
		ok, failures := Factory().ValidateParameters(params)
		r.False(ok, "params %v", params)
		r.NotEmpty(failures)
	}

	_, err := Factory().NewDriver(map[string]interface{}{paramAddress: "0x40"}, "not a bus")
	r.Error(err)
	_, err = Factory().NewDriver(map[string]interface{}{}, new(fakeBus))
	r.Error(err)
}

func TestParseAddr(t *testing.T) {
	r := require.New(t)
	addr, err := parseAddr(" 0x41 ")
	r.NoError(err)
	r.Equal(byte(0x41), addr)
	addr, err = parseAddr("65")
	r.NoError(err)
	r.Equal(byte(65), addr)
	_, err = parseAddr("")
	r.Error(err)
	_, err = parseAddr("300")
	r.Error(err)
}

func TestChannelSet(t *testing.T) {
	r := require.New(t)
	b, d := newTestDriver(t)
	pwm := d.(hal.PWMDriver)
	r.Len(pwm.PWMChannels(), pca9685.NumChannels)

	ch, err := pwm.PWMChannel(2)
	r.NoError(err)
	r.Equal(2, ch.Number())
	r.Equal("PCA9685:2", ch.Name())

	r.NoError(ch.Set(0))
	r.NoError(ch.Set(100))
	r.NoError(ch.Set(50))
	r.Error(ch.Set(101))
	r.Error(ch.Set(-1))

	r.Equal([]write{
		{0x41, []byte{0x10, 0x00, 0x10}},             // full off
		{0x41, []byte{0x10, 0x00, 0x00}},             // clear full off
		{0x41, []byte{0x0E, 0x00, 0x10}},             // full on
		{0x41, []byte{0x0E, 0x00, 0x00, 0xFF, 0x07}}, // 2047 ticks
	}, b.writes)

	_, err = pwm.PWMChannel(16)
	r.Error(err)
}

func TestDigitalOutput(t *testing.T) {
	r := require.New(t)
	b, d := newTestDriver(t)
	out := d.(hal.DigitalOutputDriver)
	r.Len(out.DigitalOutputPins(), pca9685.NumChannels)

	pin, err := out.DigitalOutputPin(15)
	r.NoError(err)
	r.False(pin.LastState())
	r.NoError(pin.Write(true))
	r.True(pin.LastState())
	r.NoError(pin.Write(false))
	r.False(pin.LastState())
	r.Len(b.writes, 3)

	_, err = out.DigitalOutputPin(-1)
	r.Error(err)
}

func TestDriverPinsAndClose(t *testing.T) {
	r := require.New(t)
	b, d := newTestDriver(t)
	pins, err := d.Pins(hal.PWM)
	r.NoError(err)
	r.Len(pins, pca9685.NumChannels)
	_, err = d.Pins(hal.AnalogInput)
	r.Error(err)

	r.NoError(d.Close())
	r.Equal([]write{{0x41, []byte{0xFC, 0x00, 0x10}}}, b.writes)
}
