// Package sim models the ATmega32 Timer/Counter1 on the host so the driver
// and the firmware logic built on it run without hardware.
//
// The model covers what the driver configures: Normal and CTC counting,
// the internal prescaler taps, the T1 external clock, the TOV1/OCF1A flags
// and the TOIE1/OCIE1A interrupt sources. PWM and input capture modes count
// like Normal mode.
package sim

import "avrtimer/timer1"

// Vectors receives the Timer1 interrupts. *timer1.Driver satisfies it.
type Vectors interface {
	HandleOverflow()
	HandleCompareMatch()
}

// Reg8 is a plain 8-bit register cell.
type Reg8 struct {
	value uint8
}

func (r *Reg8) Get() uint8            { return r.value }
func (r *Reg8) Set(value uint8)       { r.value = value }
func (r *Reg8) SetBits(value uint8)   { r.value |= value }
func (r *Reg8) ClearBits(value uint8) { r.value &^= value }

// Reg16 is a 16-bit register pair. Writes are counted so tests can tell a
// software write from a hardware increment.
type Reg16 struct {
	value  uint16
	writes int
}

func (r *Reg16) Get() uint16 { return r.value }

func (r *Reg16) Set(value uint16) {
	r.value = value
	r.writes++
}

// Writes returns how many times software wrote the register.
func (r *Reg16) Writes() int { return r.writes }

// Peripheral is a single Timer1 instance. It is not safe for concurrent
// use; step it from the goroutine that owns the driver.
type Peripheral struct {
	TCCR1A Reg8
	TCCR1B Reg8
	TIMSK  Reg8
	TIFR   Reg8
	TCNT1  Reg16
	OCR1A  Reg16

	// prescaler phase in CPU cycles
	phase uint32

	// SREG I bit
	globalInterrupts bool

	vectors Vectors

	overflows uint32
	matches   uint32
}

// New returns a peripheral in its reset state: all registers zero and
// global interrupts off.
func New() *Peripheral {
	return &Peripheral{}
}

// Registers exposes the peripheral as the driver's register bank.
func (p *Peripheral) Registers() timer1.Registers {
	return timer1.Registers{
		TCCR1A: &p.TCCR1A,
		TCCR1B: &p.TCCR1B,
		TIMSK:  &p.TIMSK,
		TCNT1:  &p.TCNT1,
		OCR1A:  &p.OCR1A,
	}
}

// Attach routes the interrupt vectors to v.
func (p *Peripheral) Attach(v Vectors) {
	p.vectors = v
}

// Sei sets the global interrupt enable and services anything pending.
func (p *Peripheral) Sei() {
	p.globalInterrupts = true
	p.service()
}

// Cli clears the global interrupt enable.
func (p *Peripheral) Cli() {
	p.globalInterrupts = false
}

// Overflows is the number of TOV1 events raised since reset, serviced or not.
func (p *Peripheral) Overflows() uint32 { return p.overflows }

// Matches is the number of OCF1A events raised since reset.
func (p *Peripheral) Matches() uint32 { return p.matches }

func (p *Peripheral) clockSelect() timer1.Prescaler {
	return timer1.Prescaler(p.TCCR1B.value & timer1.ClockMask)
}

func (p *Peripheral) ctc() bool {
	return p.TCCR1A.value&timer1.WGMMaskA == 0 &&
		p.TCCR1B.value&timer1.WGMMaskB == 1<<timer1.WGM12
}

// Step advances the CPU clock by cycles. It returns the number of timer
// clocks applied to TCNT1.
func (p *Peripheral) Step(cycles uint32) uint32 {
	div := p.clockSelect().Divisor()
	if div == 0 {
		return 0
	}
	total := uint64(p.phase) + uint64(cycles)
	ticks := uint32(total / uint64(div))
	p.phase = uint32(total % uint64(div))
	for i := uint32(0); i < ticks; i++ {
		p.tick()
	}
	return ticks
}

// ClockEdge drives the T1 pin. The counter advances when the selected
// external clock matches the edge.
func (p *Peripheral) ClockEdge(rising bool) bool {
	switch p.clockSelect() {
	case timer1.ExternalRising:
		if !rising {
			return false
		}
	case timer1.ExternalFalling:
		if rising {
			return false
		}
	default:
		return false
	}
	p.tick()
	return true
}

// tick applies one timer clock.
func (p *Peripheral) tick() {
	top := p.OCR1A.value
	switch {
	case p.ctc() && p.TCNT1.value == top:
		// TOV1 is only raised in CTC when TOP is MAX.
		if top == 0xFFFF {
			p.raise(timer1.TOV1)
		}
		p.TCNT1.value = 0
	default:
		p.TCNT1.value++
		if p.TCNT1.value == 0 {
			p.raise(timer1.TOV1)
		}
	}
	if p.TCNT1.value == top {
		p.raise(timer1.OCF1A)
	}
	p.service()
}

func (p *Peripheral) raise(flag uint8) {
	switch flag {
	case timer1.TOV1:
		p.overflows++
	case timer1.OCF1A:
		p.matches++
	}
	p.TIFR.value |= 1 << flag
}

// service runs pending vectors in priority order. Entering a vector clears
// its flag whether or not anything handles it.
func (p *Peripheral) service() {
	if !p.globalInterrupts {
		return
	}
	if p.pending(timer1.OCF1A, timer1.OCIE1A) {
		p.TIFR.value &^= 1 << timer1.OCF1A
		if p.vectors != nil {
			p.vectors.HandleCompareMatch()
		}
	}
	if p.pending(timer1.TOV1, timer1.TOIE1) {
		p.TIFR.value &^= 1 << timer1.TOV1
		if p.vectors != nil {
			p.vectors.HandleOverflow()
		}
	}
}

func (p *Peripheral) pending(flag, enable uint8) bool {
	return p.TIFR.value&(1<<flag) != 0 && p.TIMSK.value&(1<<enable) != 0
}

// ClearFlags writes ones to TIFR bits, which clears them on AVR.
func (p *Peripheral) ClearFlags(mask uint8) {
	p.TIFR.value &^= mask
}
