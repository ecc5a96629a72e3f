package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var spinFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a one-line progress indicator on stderr while a slow
// operation such as a scrypt key derivation runs.
type Spinner struct {
	out  io.Writer
	msg  string
	pct  float64
	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewSpinner creates a spinner writing to stderr.
func NewSpinner(msg string) *Spinner {
	return &Spinner{
		out:  os.Stderr,
		msg:  msg,
		pct:  -1,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Start begins the animation in a goroutine.
func (s *Spinner) Start() {
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()
		for i := 0; ; i++ {
			s.draw(i)
			select {
			case <-s.stop:
				fmt.Fprintf(s.out, "\r%-60s\r", "")
				return
			case <-ticker.C:
			}
		}
	}()
}

// Progress records a completion fraction in [0, 1]. It has the shape of a
// keystore progress callback.
func (s *Spinner) Progress(fraction float64) {
	s.mu.Lock()
	s.pct = fraction
	s.mu.Unlock()
}

func (s *Spinner) draw(i int) {
	s.mu.Lock()
	line := s.msg
	if s.pct >= 0 {
		line = fmt.Sprintf("%s %3.0f%%", s.msg, s.pct*100)
	}
	s.mu.Unlock()
	fmt.Fprintf(s.out, "\r%s  %s", StyleNetwork.Render(spinFrames[i%len(spinFrames)]), line)
}

// Stop halts the spinner and waits for it to finish.
func (s *Spinner) Stop() {
	close(s.stop)
	<-s.done
}
