//go:build tinygo && avr

package main

import (
	"device/avr"
	"runtime/volatile"
	"unsafe"

	"avrtimer/telemetry"
	"avrtimer/timer1"
)

const (
	cpuHz = 16000000
	baud  = 38400

	addrDDRB  = 0x37
	addrPORTB = 0x38
	ledPin    = 0 // PB0
)

var (
	ddrb  = (*volatile.Register8)(unsafe.Pointer(uintptr(addrDDRB)))
	portb = (*volatile.Register8)(unsafe.Pointer(uintptr(addrPORTB)))

	ring telemetry.EventRing
)

func toggleLED() {
	portb.Set(portb.Get() ^ 1<<ledPin)
}

func main() {
	ddrb.SetBits(1 << ledPin)

	out := InitUSART(cpuHz, baud)
	rep := telemetry.NewReporter(out, &ring)

	// Roughly 250ms per match at clk/64 (250kHz timer clock).
	opts := telemetry.Options{
		Mode:       timer1.ModeCompareMatch,
		Prescaler:  timer1.Prescale64,
		Threshold:  62500,
		Interrupts: timer1.InterruptEnabled,
		CPUHz:      cpuHz,
		OnEvent:    toggleLED,
	}
	telemetry.Setup(timer1.Timer1, &ring, opts)
	avr.Asm("sei")

	// usart.Write cannot fail, so neither can the reporter.
	_ = rep.ReportConfig(opts)

	for {
		_, _ = rep.Flush()
	}
}
