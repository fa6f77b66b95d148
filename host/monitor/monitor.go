// Package monitor consumes the Timer1 telemetry stream on the host and
// keeps running statistics about it.
package monitor

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"avrtimer/protocol"
	"avrtimer/timer1"
)

// Stats is a snapshot of what the monitor has seen.
type Stats struct {
	Frames      uint64
	BadMessages uint64 // frames that passed CRC but did not decode
	FrameGaps   uint64 // frames missing according to the sequence nibble
	Resyncs     uint32

	Overflows uint64
	Compares  uint64
	Lost      uint64 // events missing according to the event sequence
	Dropped   uint32 // events the MCU dropped, as last reported
	Restarts  uint64 // event sequence went backwards

	LastCounter uint16
	FirstEvent  time.Time
	LastEvent   time.Time

	Config *protocol.ConfigMessage
}

// Events returns the total number of events received.
func (s Stats) Events() uint64 {
	return s.Overflows + s.Compares
}

// Monitor reads frames from the board and updates Stats.
type Monitor struct {
	reader *protocol.FrameReader

	mu        sync.Mutex
	stats     Stats
	lastSeq   uint32
	haveSeq   bool
	lastFrame uint8
	haveFrame bool
	onEvent   func(*protocol.EventMessage)

	now func() time.Time
}

// New creates a Monitor reading from r.
func New(r io.Reader) *Monitor {
	return &Monitor{
		reader: protocol.NewFrameReader(r),
		now:    time.Now,
	}
}

// OnEvent sets a function called for every decoded event. It runs on the
// goroutine executing Run.
func (m *Monitor) OnEvent(fn func(*protocol.EventMessage)) {
	m.mu.Lock()
	m.onEvent = fn
	m.mu.Unlock()
}

// Run reads until the stream ends. io.EOF is a clean end and returns nil.
func (m *Monitor) Run() error {
	for {
		msg, err := m.reader.Next()
		if err != nil {
			m.mu.Lock()
			m.stats.Resyncs = m.reader.Resyncs()
			m.mu.Unlock()
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to read frame: %w", err)
		}
		m.handle(msg)
	}
}

func (m *Monitor) handle(msg *protocol.Message) {
	decoded, err := protocol.Decode(msg.Payload)

	m.mu.Lock()
	m.stats.Frames++
	m.stats.Resyncs = m.reader.Resyncs()
	if m.haveFrame {
		expected := (m.lastFrame + 1) & protocol.MessageSeqMask
		m.stats.FrameGaps += uint64((msg.Sequence - expected) & protocol.MessageSeqMask)
	}
	m.lastFrame = msg.Sequence
	m.haveFrame = true

	if err != nil {
		m.stats.BadMessages++
		m.mu.Unlock()
		return
	}

	var ev *protocol.EventMessage
	switch v := decoded.(type) {
	case *protocol.ConfigMessage:
		m.stats.Config = v
		// A config frame starts a new run on the MCU.
		m.haveSeq = false
	case *protocol.EventMessage:
		ev = v
		m.recordEvent(v)
	}
	onEvent := m.onEvent
	m.mu.Unlock()

	if ev != nil && onEvent != nil {
		onEvent(ev)
	}
}

func (m *Monitor) recordEvent(ev *protocol.EventMessage) {
	switch ev.Kind {
	case protocol.EventOverflow:
		m.stats.Overflows++
	case protocol.EventCompareMatch:
		m.stats.Compares++
	default:
		m.stats.BadMessages++
		return
	}

	if m.haveSeq {
		switch {
		case ev.Seq > m.lastSeq:
			m.stats.Lost += uint64(ev.Seq - m.lastSeq - 1)
		default:
			m.stats.Restarts++
		}
	}
	m.lastSeq = ev.Seq
	m.haveSeq = true

	now := m.now()
	if m.stats.FirstEvent.IsZero() {
		m.stats.FirstEvent = now
	}
	m.stats.LastEvent = now
	m.stats.LastCounter = ev.Counter
	m.stats.Dropped = ev.Dropped
}

// Stats returns a copy of the current statistics.
func (m *Monitor) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.stats
	if s.Config != nil {
		cfg := *s.Config
		s.Config = &cfg
	}
	return s
}

// Reset clears the counters but keeps the last reported configuration.
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats = Stats{Config: m.stats.Config}
	m.haveSeq = false
	m.haveFrame = false
}

// ExpectedPeriod is the event interval implied by the reported
// configuration.
func (s Stats) ExpectedPeriod() (time.Duration, bool) {
	if s.Config == nil {
		return 0, false
	}
	var d time.Duration
	switch s.Config.Mode {
	case timer1.ModeCompareMatch:
		d = timer1.CompareMatchPeriod(s.Config.CPUHz, s.Config.Prescaler, s.Config.Threshold)
	case timer1.ModeNormal:
		d = timer1.OverflowPeriod(s.Config.CPUHz, s.Config.Prescaler)
	}
	return d, d > 0
}

// MeasuredPeriod is the mean interval between events as seen by the host,
// counting lost events.
func (s Stats) MeasuredPeriod() (time.Duration, bool) {
	n := s.Events() + s.Lost
	if n < 2 {
		return 0, false
	}
	return s.LastEvent.Sub(s.FirstEvent) / time.Duration(n-1), true
}

// Print writes a human-readable summary.
func (s Stats) Print(w io.Writer) {
	fmt.Fprintln(w, "\n=== Timer1 Telemetry ===")
	if s.Config != nil {
		fmt.Fprintf(w, "Mode: %s  Prescaler: %s  Threshold: %d  CPU: %d Hz\n",
			s.Config.Mode, s.Config.Prescaler, s.Config.Threshold, s.Config.CPUHz)
	} else {
		fmt.Fprintln(w, "No configuration received")
	}
	fmt.Fprintf(w, "Frames: %d (gaps %d, resyncs %d, bad %d)\n",
		s.Frames, s.FrameGaps, s.Resyncs, s.BadMessages)
	fmt.Fprintf(w, "Events: %d overflow, %d compare\n", s.Overflows, s.Compares)
	fmt.Fprintf(w, "Lost: %d  Dropped on MCU: %d  Restarts: %d\n", s.Lost, s.Dropped, s.Restarts)
	fmt.Fprintf(w, "Last counter: %d\n", s.LastCounter)
	if d, ok := s.ExpectedPeriod(); ok {
		fmt.Fprintf(w, "Expected period: %v\n", d)
	}
	if d, ok := s.MeasuredPeriod(); ok {
		fmt.Fprintf(w, "Measured period: %v\n", d)
	}
	fmt.Fprintln(w, "========================")
}
