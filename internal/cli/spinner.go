package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

const spinnerInterval = 80 * time.Millisecond

var spinnerFrames = []rune("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")

// Spinner draws a status line with the elapsed time while a pipeline stage
// runs. The line is cleared when the parent context ends or Stop is called.
type Spinner struct {
	w      io.Writer
	parent context.Context

	mu      sync.Mutex
	message string
	drawn   int // width of the last line written
	started time.Time

	quit    chan struct{}
	exited  chan struct{}
	stopper sync.Once
}

func newSpinner(ctx context.Context, message string) *Spinner {
	return newSpinnerTo(ctx, os.Stderr, message)
}

func newSpinnerTo(ctx context.Context, w io.Writer, message string) *Spinner {
	return &Spinner{
		w:       w,
		parent:  ctx,
		message: message,
		quit:    make(chan struct{}),
		exited:  make(chan struct{}),
	}
}

// Start launches the drawing goroutine.
func (s *Spinner) Start() {
	s.started = time.Now()
	go s.loop()
}

func (s *Spinner) loop() {
	defer close(s.exited)
	tick := time.NewTicker(spinnerInterval)
	defer tick.Stop()

	for frame := 0; ; frame++ {
		select {
		case <-s.quit:
			return
		case <-s.parent.Done():
			s.clear()
			return
		case <-tick.C:
			s.draw(spinnerFrames[frame%len(spinnerFrames)])
		}
	}
}

func (s *Spinner) draw(frame rune) {
	s.mu.Lock()
	defer s.mu.Unlock()
	elapsed := time.Since(s.started).Truncate(100 * time.Millisecond)
	text := fmt.Sprintf("%s (%s)", s.message, elapsed)
	s.drawn = len(text) + 2
	fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(string(frame)), StyleDim.Render(text))
}

func (s *Spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drawn > 0 {
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.drawn))
		s.drawn = 0
	}
}

// Update changes the message. A shorter message is padded so the previous
// one is fully overwritten on the next frame.
func (s *Spinner) Update(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := len(s.message) - len(message); n > 0 {
		message += strings.Repeat(" ", n)
	}
	s.message = message
}

// Stop ends the animation and clears the line. Calling it again does nothing.
func (s *Spinner) Stop() {
	s.stopper.Do(func() {
		close(s.quit)
		if !s.started.IsZero() {
			<-s.exited
		}
		s.clear()
	})
}

// StopWithError stops the spinner and prints message as an error line.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled reports whether the parent context ended while the spinner was
// still running.
func (s *Spinner) Cancelled() bool {
	select {
	case <-s.quit:
		return false
	default:
		return s.parent.Err() != nil
	}
}
