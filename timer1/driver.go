// Package timer1 drives the ATmega32 16-bit Timer/Counter1.
//
// The driver programs the waveform mode, the clock select and the interrupt
// mask, and routes the overflow and compare-match A vectors to at most one
// callback each. Counter and compare values live only in hardware; every
// read goes to the register.
package timer1

// Callback runs in interrupt context. It must not block, allocate or wait.
type Callback func()

// Driver owns the Timer1 register bank and the two callback slots.
type Driver struct {
	regs     Registers
	overflow Callback
	compare  Callback
}

// New returns a driver over regs. On AVR builds use the package-level
// Timer1; tests and the simulator build their own.
func New(regs Registers) *Driver {
	return &Driver{regs: regs}
}

// Init programs the mode, zeroes the counter and sets the interrupt mask for
// the mode's event. Disabling clears both the overflow and the compare-match
// mask bits whatever the mode. An unknown mode leaves the WGM bits alone.
func (d *Driver) Init(cfg Config) {
	switch cfg.Mode {
	case ModeNormal:
		d.regs.TCCR1A.ClearBits(WGMMaskA)
		d.regs.TCCR1B.ClearBits(WGMMaskB)
	case ModeCompareMatch:
		d.regs.TCCR1A.ClearBits(WGMMaskA)
		d.regs.TCCR1B.ClearBits(1 << WGM13)
		d.regs.TCCR1B.SetBits(1 << WGM12)
	}

	d.regs.TCNT1.Set(0)

	switch cfg.Interrupt {
	case InterruptEnabled:
		switch cfg.Mode {
		case ModeNormal:
			d.regs.TIMSK.SetBits(1 << TOIE1)
		case ModeCompareMatch:
			d.regs.TIMSK.SetBits(1 << OCIE1A)
		}
	case InterruptDisabled:
		d.regs.TIMSK.ClearBits(InterruptMask)
	}
}

// Start selects the clock source in a single TCCR1B write. Start(NoClock)
// is the same as Stop.
func (d *Driver) Start(p Prescaler) {
	v := d.regs.TCCR1B.Get()
	d.regs.TCCR1B.Set(v&^ClockMask | uint8(p)&ClockMask)
}

// Stop removes the clock source. The counter keeps its value.
func (d *Driver) Stop() {
	d.regs.TCCR1B.ClearBits(ClockMask)
}

// Running reports whether a clock source is selected.
func (d *Driver) Running() bool {
	return d.regs.TCCR1B.Get()&ClockMask != 0
}

// Prescaler returns the clock source currently selected.
func (d *Driver) Prescaler() Prescaler {
	return Prescaler(d.regs.TCCR1B.Get() & ClockMask)
}

// Mode decodes the WGM bits. ok is false for waveform modes this driver
// does not configure.
func (d *Driver) Mode() (mode Mode, ok bool) {
	a := d.regs.TCCR1A.Get() & WGMMaskA
	b := d.regs.TCCR1B.Get() & WGMMaskB
	switch {
	case a == 0 && b == 0:
		return ModeNormal, true
	case a == 0 && b == 1<<WGM12:
		return ModeCompareMatch, true
	}
	return 0, false
}

// SetCounterValue writes TCNT1. A write while running races the next
// hardware increment; nothing here serialises the two.
func (d *Driver) SetCounterValue(value uint16) {
	d.regs.TCNT1.Set(value)
}

// GetCounterValue reads TCNT1.
func (d *Driver) GetCounterValue() uint16 {
	return d.regs.TCNT1.Get()
}

// SetCompareThreshold writes OCR1A. It only affects counting in
// CompareMatch mode but the write always lands.
func (d *Driver) SetCompareThreshold(value uint16) {
	d.regs.OCR1A.Set(value)
}

// GetCompareThreshold reads OCR1A.
func (d *Driver) GetCompareThreshold() uint16 {
	return d.regs.OCR1A.Get()
}

// SetOverflowCallback replaces the overflow handler. nil stops dispatch
// but leaves TOIE1 as it is.
func (d *Driver) SetOverflowCallback(cb Callback) {
	state := enterCritical()
	d.overflow = cb
	exitCritical(state)
}

// SetCompareCallback replaces the compare-match handler. nil stops
// dispatch but leaves OCIE1A as it is.
func (d *Driver) SetCompareCallback(cb Callback) {
	state := enterCritical()
	d.compare = cb
	exitCritical(state)
}

// HandleOverflow is the TIMER1_OVF vector body.
func (d *Driver) HandleOverflow() {
	state := enterCritical()
	cb := d.overflow
	exitCritical(state)
	if cb != nil {
		cb()
	}
}

// HandleCompareMatch is the TIMER1_COMPA vector body.
func (d *Driver) HandleCompareMatch() {
	state := enterCritical()
	cb := d.compare
	exitCritical(state)
	if cb != nil {
		cb()
	}
}
