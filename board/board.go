package board

import (
	"flag"
	"fmt"
	"io"

	"github.com/antongulenko/golib"
	"github.com/antongulenko/pca9685ctl/bus"
	"github.com/antongulenko/pca9685ctl/ft260"
	"github.com/antongulenko/pca9685ctl/pca9685"
	log "github.com/sirupsen/logrus"
)

const (
	TransportPeriph = "periph"
	TransportFt260  = "ft260"
	TransportReefPi = "reefpi"
	TransportDummy  = "dummy"
)

var Transports = []string{TransportPeriph, TransportFt260, TransportReefPi, TransportDummy}

var DefaultBoard = Board{
	Transport:       TransportPeriph,
	BusName:         "",
	Address:         uint(pca9685.ADDRESS),
	I2cRequestQueue: 20,
}

// Board connects one PCA9685 through the configured transport.
type Board struct {
	Transport       string
	BusName         string // periph bus name or FT260 USB path
	Address         uint
	I2cRequestQueue int
	NoI2cSequencer  bool

	Device *pca9685.Device

	transport bus.I2cBus
	sequencer *bus.Sequencer
}

func (b *Board) RegisterFlags() {
	flag.StringVar(&b.Transport, "transport", b.Transport, fmt.Sprintf("I2C transport, one of %v", Transports))
	flag.StringVar(&b.BusName, "bus", b.BusName, "periph I2C bus name (e.g. /dev/i2c-1) or USB path of the FT260")
	flag.UintVar(&b.Address, "addr", b.Address, "I2C address of the PCA9685")
	flag.IntVar(&b.I2cRequestQueue, "i2c-queue", b.I2cRequestQueue, "Size of the I2C request queue")
	flag.BoolVar(&b.NoI2cSequencer, "no-i2c-sequencer", b.NoI2cSequencer, "Disable the extra goroutine for sequencing I2C commands")
}

func (b *Board) Setup() error {
	if b.Address > uint(pca9685.ADDRESS_MAX) {
		return fmt.Errorf("Invalid I2C address %#02x (maximum %#02x)", b.Address, pca9685.ADDRESS_MAX)
	}
	transport, err := b.openTransport()
	if err != nil {
		return err
	}
	b.transport = transport
	if !b.NoI2cSequencer {
		b.sequencer = &bus.Sequencer{Bus: transport, QueueSize: b.I2cRequestQueue}
		b.sequencer.Start()
	}
	b.Device = pca9685.New(b.Bus(), byte(b.Address))
	log.Printf("Using PCA9685 at %#02x through %v transport", b.Address, b.Transport)
	return nil
}

func (b *Board) openTransport() (bus.I2cBus, error) {
	switch b.Transport {
	case TransportPeriph:
		return bus.OpenPeriph(b.BusName)
	case TransportFt260:
		return ft260.OpenPath(b.BusName)
	case TransportReefPi:
		return bus.OpenReefPi()
	case TransportDummy:
		log.Println("Dummy transport: not using any I2C peripherals")
		return new(bus.Dummy), nil
	default:
		return nil, fmt.Errorf("Unknown transport '%v', available: %v", b.Transport, Transports)
	}
}

// Bus returns the bus shared by all users of the board. Setup must be called first.
func (b *Board) Bus() bus.I2cBus {
	if b.sequencer != nil {
		return b.sequencer
	}
	return b.transport
}

// Cleanup switches all outputs off and releases the transport.
func (b *Board) Cleanup() {
	if b.Device != nil {
		golib.Printerr(b.Device.SetChannelFullOff(pca9685.All))
	}
	if b.sequencer != nil {
		b.sequencer.Stop()
	}
	if closer, ok := b.transport.(io.Closer); ok {
		golib.Printerr(closer.Close())
	}
}
