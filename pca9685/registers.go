package pca9685

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	MODE1 = byte(iota)
	MODE2

	// The I2C addresses are stored in the 7 MSBs. Addresses must be left-shifted once.
	SUBADR1
	SUBADR2
	SUBADR3
	ALLCALLADR

	// First LED register. Every output occupies BYTE_PER_OUTPUT registers:
	// ON_L, ON_H, OFF_L, OFF_H.
	LED0_ON_L
	LED0_ON_H
	LED0_OFF_L
	LED0_OFF_H
)

const (
	ALL_LED_ON_L = byte(0xFA + iota)
	ALL_LED_ON_H
	ALL_LED_OFF_L
	ALL_LED_OFF_H
	PRE_SCALE // Only settable in SLEEP mode. Default value: 0x30
	TEST_MODE
)

// Default values all zero, except ALLCALL and SLEEP
const (
	MODE1_ALLCALL = byte(1 << iota) // 1: Respond to ALLCALL address
	MODE1_SUB3                      // 1: Respond to SUB3 address
	MODE1_SUB2                      // 1: Respond to SUB2 address
	MODE1_SUB1                      // 1: Respond to SUB1 address
	MODE1_SLEEP                     // 0: normal mode 1: oscillator off, low power mode
	MODE1_AI                        // 1: Register auto increment
	MODE1_EXTCLK                    // 1: use EXTCLK pin as clock source
	MODE1_RESTART                   // Write 1: wake up from SLEEP
)

const (
	ADDRESS     = byte(0x40) // 0100 0000
	ADDRESS_MAX = byte(0x7F) // 0111 1111

	BYTE_PER_OUTPUT = 4
)

// Channel selects one of the 16 outputs, or All for the broadcast registers.
type Channel byte

const (
	C0 = Channel(iota)
	C1
	C2
	C3
	C4
	C5
	C6
	C7
	C8
	C9
	C10
	C11
	C12
	C13
	C14
	C15
	All

	NumChannels = int(All)
)

func (c Channel) Valid() bool {
	return c <= All
}

func (c Channel) String() string {
	switch {
	case c == All:
		return "All"
	case c < All:
		return fmt.Sprintf("C%d", byte(c))
	default:
		return fmt.Sprintf("Channel(%d)", byte(c))
	}
}

// ParseChannel accepts "0".."15", "C0".."C15" and "all" in any case.
func ParseChannel(s string) (Channel, error) {
	if strings.EqualFold(s, "all") {
		return All, nil
	}
	number := s
	if len(number) > 1 && (number[0] == 'C' || number[0] == 'c') {
		number = number[1:]
	}
	n, err := strconv.ParseUint(number, 10, 8)
	if err != nil || n >= uint64(NumChannels) {
		return 0, fmt.Errorf("Invalid channel '%v', expected 0..%v or 'all'", s, NumChannels-1)
	}
	return Channel(n), nil
}

type Edge bool

const (
	EdgeOn  = Edge(true)
	EdgeOff = Edge(false)
)

func (e Edge) String() string {
	if e == EdgeOn {
		return "on"
	}
	return "off"
}

// Low-byte registers of the ON and OFF counters, indexed by channel. The high byte follows at +1.
var (
	onRegisters = [NumChannels + 1]byte{
		0x06, 0x0A, 0x0E, 0x12, 0x16, 0x1A, 0x1E, 0x22,
		0x26, 0x2A, 0x2E, 0x32, 0x36, 0x3A, 0x3E, 0x42,
		ALL_LED_ON_L,
	}
	offRegisters = [NumChannels + 1]byte{
		0x08, 0x0C, 0x10, 0x14, 0x18, 0x1C, 0x20, 0x24,
		0x28, 0x2C, 0x30, 0x34, 0x38, 0x3C, 0x40, 0x44,
		ALL_LED_OFF_L,
	}
)

// OnRegister panics if the channel is not valid.
func OnRegister(c Channel) byte {
	return onRegisters[checkChannel(c)]
}

// OffRegister panics if the channel is not valid.
func OffRegister(c Channel) byte {
	return offRegisters[checkChannel(c)]
}

func Register(c Channel, e Edge) byte {
	if e == EdgeOn {
		return OnRegister(c)
	}
	return OffRegister(c)
}

func checkChannel(c Channel) Channel {
	if !c.Valid() {
		panic(fmt.Sprintf("Invalid PCA9685 channel %v", c))
	}
	return c
}
