//go:build tinygo && avr

package timer1

import (
	"runtime/interrupt"
	"runtime/volatile"
	"unsafe"
)

var (
	tccr1a = (*volatile.Register8)(unsafe.Pointer(uintptr(AddrTCCR1A)))
	tccr1b = (*volatile.Register8)(unsafe.Pointer(uintptr(AddrTCCR1B)))
	timsk  = (*volatile.Register8)(unsafe.Pointer(uintptr(AddrTIMSK)))
	tcnt1h = (*volatile.Register8)(unsafe.Pointer(uintptr(AddrTCNT1H)))
	tcnt1l = (*volatile.Register8)(unsafe.Pointer(uintptr(AddrTCNT1L)))
	ocr1ah = (*volatile.Register8)(unsafe.Pointer(uintptr(AddrOCR1AH)))
	ocr1al = (*volatile.Register8)(unsafe.Pointer(uintptr(AddrOCR1AL)))
)

// ioPair is a 16-bit timer register reached through the shared TEMP latch.
// The low byte must be read first and the high byte written first; an ISR
// touching any 16-bit timer register in between corrupts TEMP, so both
// accesses run with interrupts off.
type ioPair struct {
	high *volatile.Register8
	low  *volatile.Register8
}

func (p ioPair) Get() uint16 {
	state := interrupt.Disable()
	low := p.low.Get()
	high := p.high.Get()
	interrupt.Restore(state)
	return uint16(high)<<8 | uint16(low)
}

func (p ioPair) Set(value uint16) {
	state := interrupt.Disable()
	p.high.Set(uint8(value >> 8))
	p.low.Set(uint8(value))
	interrupt.Restore(state)
}

// HardwareRegisters returns the register bank at the fixed ATmega32 addresses.
func HardwareRegisters() Registers {
	return Registers{
		TCCR1A: tccr1a,
		TCCR1B: tccr1b,
		TIMSK:  timsk,
		TCNT1:  ioPair{high: tcnt1h, low: tcnt1l},
		OCR1A:  ioPair{high: ocr1ah, low: ocr1al},
	}
}

// Timer1 drives the single on-chip Timer/Counter1.
var Timer1 = New(HardwareRegisters())

func init() {
	interrupt.New(IRQCompareA, func(interrupt.Interrupt) {
		Timer1.HandleCompareMatch()
	})
	interrupt.New(IRQOverflow, func(interrupt.Interrupt) {
		Timer1.HandleOverflow()
	})
}
