package bus

import (
	"errors"
	"sync"

	log "github.com/sirupsen/logrus"
)

const (
	I2cWrite = iota + 1
	I2cWriteRead
)

var ErrSequencerStopped = errors.New("I2C sequencer is stopped")

type Request struct {
	Type      int
	Addr      byte
	DataWrite []byte
	DataRead  []byte
	Error     error

	done bool
	wait *sync.Cond
}

func (r *Request) init() {
	r.wait = &sync.Cond{L: new(sync.Mutex)}
}

func (r *Request) Wait() {
	r.wait.L.Lock()
	defer r.wait.L.Unlock()
	for !r.done {
		r.wait.Wait()
	}
}

func (r *Request) notifyDone() {
	r.wait.L.Lock()
	defer r.wait.L.Unlock()
	r.done = true
	r.wait.Broadcast()
}

// Sequencer serializes the requests of multiple goroutines onto one bus.
// All requests are executed by a single goroutine, in the order they were queued.
type Sequencer struct {
	Bus       I2cBus
	QueueSize int

	queue   chan *Request
	lock    sync.RWMutex
	stopped bool
	served  sync.WaitGroup
}

func (s *Sequencer) Start() {
	s.queue = make(chan *Request, s.QueueSize)
	s.served.Add(1)
	go s.handleRequests()
}

// Stop waits for all queued requests to be served. Requests queued afterwards fail with ErrSequencerStopped.
func (s *Sequencer) Stop() {
	s.lock.Lock()
	if s.stopped || s.queue == nil {
		s.lock.Unlock()
		return
	}
	s.stopped = true
	close(s.queue)
	s.lock.Unlock()
	s.served.Wait()
}

func (s *Sequencer) handleRequests() {
	defer s.served.Done()
	for req := range s.queue {
		switch req.Type {
		case I2cWrite:
			req.Error = s.Bus.I2cWrite(req.Addr, req.DataWrite...)
		case I2cWriteRead:
			req.Error = s.Bus.I2cWriteRead(req.Addr, req.DataWrite, req.DataRead)
		default:
			log.Errorln("Ignoring invalid I2C request with type", req.Type)
		}
		req.notifyDone()
	}
}

func (s *Sequencer) QueueRequest(req *Request) {
	req.init()
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.stopped || s.queue == nil {
		req.Error = ErrSequencerStopped
		req.done = true
		return
	}
	s.queue <- req
}

func (s *Sequencer) Request(req *Request) {
	s.QueueRequest(req)
	req.Wait()
}

func (s *Sequencer) I2cWrite(addr byte, data ...byte) error {
	req := &Request{
		Type:      I2cWrite,
		Addr:      addr,
		DataWrite: data,
	}
	s.Request(req)
	return req.Error
}

func (s *Sequencer) I2cWriteRead(addr byte, out, in []byte) error {
	req := &Request{
		Type:      I2cWriteRead,
		Addr:      addr,
		DataWrite: out,
		DataRead:  in,
	}
	s.Request(req)
	return req.Error
}
