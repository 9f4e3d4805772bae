package pca9685

import (
	"fmt"
	"math"
)

const (
	TIMER_MAX        = 4095
	TIMER_RESOLUTION = TIMER_MAX + 1

	// Bit 12 of the 16 bit ON word is the full-on flag, the same bit of the OFF word is
	// the full-off flag. Full-off takes precedence over all ON settings.
	FULL_BIT = 0x1000
)

// CheckCounter returns ErrInvalidInputData for values that do not fit the 12 bit counter.
func CheckCounter(value uint16) error {
	if value > TIMER_MAX {
		return ErrInvalidInputData
	}
	return nil
}

// EncodeCounter splits a register word into the low and high byte, in register order.
func EncodeCounter(word uint16) (low, high byte) {
	return byte(word), byte(word >> 8)
}

// DecodeCounter is the inverse of EncodeCounter, separating the full on/off flag from the counter.
func DecodeCounter(low, high byte) (value uint16, full bool) {
	word := uint16(low) | uint16(high)<<8
	return word & TIMER_MAX, word&FULL_BIT != 0
}

// ValuesDelayed converts a delay and on-time, both fractions of the PWM period in [0; 1],
// to ON and OFF counter values.
func ValuesDelayed(delayTime, onTime float64) (on, off uint16) {
	if delayTime < 0 || delayTime > 1 || onTime < 0 || onTime > 1 {
		panic(fmt.Sprintf("Invalid timer values delay=%v onTime=%v", delayTime, onTime))
	}
	delayCount := round(delayTime*TIMER_RESOLUTION - 1)
	onCount := round(onTime * TIMER_RESOLUTION) // Added to delayCount, so no -1 correction
	if delayTime == 0 {
		delayCount = 0
		if onCount > 0 {
			onCount--
		}
	}
	if onTime == 0 {
		onCount = 0
	}

	start := delayCount
	end := start + onCount
	if end > TIMER_MAX {
		// The delay pushed the end of the pulse into the next period
		end -= TIMER_RESOLUTION
	}
	return uint16(start), uint16(end)
}

func round(f float64) int {
	return int(math.Floor(f + .5))
}

// Frame holds the ON and OFF counters of all 16 outputs, applied at once through SetAllOnOff.
type Frame struct {
	On  [NumChannels]uint16
	Off [NumChannels]uint16
}

func (f *Frame) Set(index int, on, off uint16) {
	f.On[index], f.Off[index] = on, off
}

// SetFraction sets an output to be on for the given fraction of the period, starting at counter 0.
func (f *Frame) SetFraction(index int, onTime float64) {
	f.On[index], f.Off[index] = ValuesDelayed(0, onTime)
}

func (f *Frame) SetFractions(values []float64) {
	for i, val := range values {
		if i >= NumChannels {
			break
		}
		f.SetFraction(i, val)
	}
}

func (f *Frame) Apply(d *Device) error {
	return d.SetAllOnOff(f.On, f.Off)
}
