package terminal

import (
	"fmt"
	"os"
	"runtime/debug"
	"sync"
)

// KeyService pumps blocking ReadKey calls into a channel
// so a render loop can select on input without blocking
type KeyService struct {
	drv     Driver
	eventCh chan KeyEvent
	errCh   chan error
	stopCh  chan struct{}
	doneCh  chan struct{}
	mu      sync.Mutex
	started bool
	stopped bool
}

// NewKeyService creates a key pump over drv
func NewKeyService(drv Driver) *KeyService {
	return &KeyService{
		drv:     drv,
		eventCh: make(chan KeyEvent, 64),
		errCh:   make(chan error, 1),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// Start launches the polling goroutine
// A service runs once; Start after Stop does nothing
func (s *KeyService) Start() {
	s.mu.Lock()
	if s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	go s.pollLoop()
}

// pollLoop reads keys until a read error or stop signal
func (s *KeyService) pollLoop() {
	defer close(s.doneCh)

	defer func() {
		if r := recover(); r != nil {
			EmergencyReset(os.Stdout)
			fmt.Fprintf(os.Stderr, "\r\n\x1b[31mKEY POLL CRASHED: %v\x1b[0m\r\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())
			os.Exit(1)
		}
	}()

	for {
		ev, err := s.drv.ReadKey()
		if err != nil {
			s.errCh <- err
			return
		}

		select {
		case s.eventCh <- ev:
		case <-s.stopCh:
			return
		}
	}
}

// Events returns the key channel
func (s *KeyService) Events() <-chan KeyEvent {
	return s.eventCh
}

// Err receives the read error that ended polling
func (s *KeyService) Err() <-chan error {
	return s.errCh
}

// Done is closed once the polling goroutine exits
func (s *KeyService) Done() <-chan struct{} {
	return s.doneCh
}

// Stop signals the pump to exit
// A goroutine blocked inside ReadKey returns once the driver is finalized
func (s *KeyService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	close(s.stopCh)
}
