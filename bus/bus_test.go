package bus

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

type loggedRequest struct {
	addr byte
	out  []byte
	read int
}

type fakeBus struct {
	lock     sync.Mutex
	requests []loggedRequest
	present  map[byte]bool
	err      error
}

func (b *fakeBus) I2cWrite(addr byte, data ...byte) error {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.requests = append(b.requests, loggedRequest{addr: addr, out: data})
	return b.err
}

func (b *fakeBus) I2cWriteRead(addr byte, out, in []byte) error {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.requests = append(b.requests, loggedRequest{addr: addr, out: out, read: len(in)})
	if b.present != nil && !b.present[addr] {
		return errNoAck(addr)
	}
	for i := range in {
		in[i] = addr
	}
	return b.err
}

func TestSequencerKeepsOrderAndAddresses(t *testing.T) {
	a := assert.New(t)
	target := new(fakeBus)
	seq := &Sequencer{Bus: target, QueueSize: 4}
	seq.Start()

	a.NoError(seq.I2cWrite(0x40, 1, 2, 3))
	in := make([]byte, 2)
	a.NoError(seq.I2cWriteRead(0x41, []byte{9}, in))
	a.Equal([]byte{0x41, 0x41}, in)
	seq.Stop()

	a.Equal([]loggedRequest{
		{addr: 0x40, out: []byte{1, 2, 3}},
		{addr: 0x41, out: []byte{9}, read: 2},
	}, target.requests)
}

func TestSequencerConcurrentCallers(t *testing.T) {
	a := assert.New(t)
	target := new(fakeBus)
	seq := &Sequencer{Bus: target, QueueSize: 2}
	seq.Start()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a.NoError(seq.I2cWrite(byte(i), byte(i)))
		}(i)
	}
	wg.Wait()
	seq.Stop()
	a.Len(target.requests, 50)
}

func TestSequencerPropagatesErrors(t *testing.T) {
	a := assert.New(t)
	busErr := errors.New("arbitration lost")
	seq := &Sequencer{Bus: &fakeBus{err: busErr}}
	seq.Start()
	a.Equal(busErr, seq.I2cWrite(0x40, 0))
	seq.Stop()

	a.Equal(ErrSequencerStopped, seq.I2cWrite(0x40, 0))
	a.Equal(ErrSequencerStopped, seq.I2cWriteRead(0x40, nil, make([]byte, 1)))
	seq.Stop() // Must not panic
}

func TestScan(t *testing.T) {
	a := assert.New(t)
	target := &fakeBus{present: map[byte]bool{0x40: true, 0x70: true, 0x03: true}}
	a.Equal([]byte{0x40, 0x70}, Scan(target))
	a.Len(target.requests, int(ScanLastAddress-ScanFirstAddress)+1)
	for _, req := range target.requests {
		a.Empty(req.out)
		a.Equal(1, req.read)
	}

	a.Equal([]byte{0x44}, Scan(&Dummy{Present: []byte{0x44}}))
	a.Empty(Scan(&fakeBus{present: map[byte]bool{}}))
}

func TestDummy(t *testing.T) {
	a := assert.New(t)
	d := new(Dummy)
	a.NoError(d.I2cWrite(0x40, 0, 1))
	in := []byte{5, 6}
	a.NoError(d.I2cWriteRead(0x40, []byte{0x06}, in))
	a.Equal([]byte{0, 0}, in)
}

func TestPeriph(t *testing.T) {
	a := assert.New(t)
	playback := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x40, W: []byte{0x06, 0x01, 0x00}},
			{Addr: 0x40, W: []byte{0x06}, R: []byte{0x01, 0x00, 0x02, 0x00}},
		},
		DontPanic: true,
	}
	b := Periph(playback)
	a.NoError(b.I2cWrite(0x40, 0x06, 0x01, 0x00))
	in := make([]byte, 4)
	a.NoError(b.I2cWriteRead(0x40, []byte{0x06}, in))
	a.Equal([]byte{0x01, 0x00, 0x02, 0x00}, in)
	a.Equal("playback", b.String())
	a.NoError(b.Close())
}

func TestPeriphRecord(t *testing.T) {
	a := assert.New(t)
	record := new(i2ctest.Record)
	b := Periph(record)
	a.NoError(b.I2cWrite(0x41, 0x00, 0x21))
	a.Error(b.I2cWriteRead(0x41, []byte{0x00}, make([]byte, 1)), "reads need a connected bus")
	a.Equal([]i2ctest.IO{{Addr: 0x41, W: []byte{0x00, 0x21}}}, record.Ops)
	a.NoError(b.Close())
}
