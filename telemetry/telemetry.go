// Package telemetry arms Timer1 to record every dispatched interrupt and
// streams the records as protocol frames. The firmware and the host
// simulator share it.
package telemetry

import (
	"io"
	"strconv"

	"avrtimer/protocol"
	"avrtimer/timer1"
)

// Options describes how Setup programs the timer.
type Options struct {
	Mode       timer1.Mode
	Prescaler  timer1.Prescaler
	Threshold  uint16 // OCR1A, only meaningful in CompareMatch mode
	Interrupts timer1.InterruptEnable
	CPUHz      uint32 // reported to the host for period calculations

	// OnEvent runs in interrupt context after the event is recorded.
	OnEvent func()
}

// Setup stops the timer, applies opts, arms the callback of the active
// mode and starts the clock. The other mode's callback is cleared.
func Setup(d *timer1.Driver, ring *EventRing, opts Options) {
	d.Stop()
	d.Init(timer1.Config{Mode: opts.Mode, Interrupt: opts.Interrupts})
	d.SetCompareThreshold(opts.Threshold)

	kind := protocol.EventOverflow
	if opts.Mode == timer1.ModeCompareMatch {
		kind = protocol.EventCompareMatch
	}
	onEvent := opts.OnEvent
	cb := func() {
		ring.Record(kind, d.GetCounterValue())
		if onEvent != nil {
			onEvent()
		}
	}

	if kind == protocol.EventCompareMatch {
		d.SetOverflowCallback(nil)
		d.SetCompareCallback(cb)
	} else {
		d.SetCompareCallback(nil)
		d.SetOverflowCallback(cb)
	}

	DebugPrintln("timer1: " + opts.Mode.String() + " " + opts.Prescaler.String() +
		" threshold=" + strconv.Itoa(int(opts.Threshold)))

	d.Start(opts.Prescaler)
}

// Reporter drains an EventRing into framed messages.
type Reporter struct {
	ring *EventRing
	fw   *protocol.FrameWriter
}

// NewReporter creates a Reporter writing frames to w.
func NewReporter(w io.Writer, ring *EventRing) *Reporter {
	return &Reporter{
		ring: ring,
		fw:   protocol.NewFrameWriter(w),
	}
}

// ReportConfig sends the timer configuration.
func (r *Reporter) ReportConfig(opts Options) error {
	msg := protocol.ConfigMessage{
		Mode:      opts.Mode,
		Prescaler: opts.Prescaler,
		Threshold: opts.Threshold,
		CPUHz:     opts.CPUHz,
	}
	return r.fw.WriteFrame(msg.Encode)
}

// Flush sends every buffered event and returns how many were sent. It
// stops at the first write error; the failed event is lost.
func (r *Reporter) Flush() (int, error) {
	sent := 0
	for {
		ev, ok := r.ring.Pop()
		if !ok {
			return sent, nil
		}
		msg := protocol.EventMessage{
			Kind:    ev.Kind,
			Seq:     ev.Seq,
			Counter: ev.Counter,
			Dropped: r.ring.Dropped(),
		}
		if err := r.fw.WriteFrame(msg.Encode); err != nil {
			DebugPrintln("telemetry: write failed: " + err.Error())
			return sent, err
		}
		sent++
	}
}
