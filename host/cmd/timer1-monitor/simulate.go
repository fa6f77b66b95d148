package main

import (
	"fmt"
	"io"
	"time"

	"avrtimer/sim"
	"avrtimer/telemetry"
	"avrtimer/timer1"
)

// runSimulation mirrors the firmware main loop: configure the timer, then
// flush telemetry every interval while the simulated clock advances by
// the same amount. It returns when w stops accepting frames.
func runSimulation(opts telemetry.Options, w io.Writer, interval time.Duration) error {
	periph := sim.New()
	drv := timer1.New(periph.Registers())
	periph.Attach(drv)

	ring := &telemetry.EventRing{}
	rep := telemetry.NewReporter(w, ring)

	telemetry.Setup(drv, ring, opts)
	periph.Sei()
	if err := rep.ReportConfig(opts); err != nil {
		return fmt.Errorf("failed to report config: %w", err)
	}

	cycles := uint32(uint64(opts.CPUHz) * uint64(interval) / uint64(time.Second))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		periph.Step(cycles)
		if _, err := rep.Flush(); err != nil {
			return err
		}
	}
	return nil
}
