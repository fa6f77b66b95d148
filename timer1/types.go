package timer1

// Mode selects the counting behaviour (the WGM13:10 waveform generation bits).
type Mode uint8

const (
	// ModeNormal counts up to 0xFFFF and wraps, raising the overflow event.
	ModeNormal Mode = iota
	// ModeCompareMatch clears the counter when it reaches OCR1A (CTC),
	// raising the compare-match event.
	ModeCompareMatch
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeCompareMatch:
		return "ctc"
	}
	return "unknown"
}

// Prescaler is the CS12:0 clock select pattern.
type Prescaler uint8

const (
	NoClock Prescaler = iota
	Prescale1
	Prescale8
	Prescale64
	Prescale256
	Prescale1024
	ExternalFalling // clock on T1 pin, falling edge
	ExternalRising  // clock on T1 pin, rising edge
)

// Prescalers lists every clock select value in bit-pattern order.
var Prescalers = []Prescaler{
	NoClock, Prescale1, Prescale8, Prescale64,
	Prescale256, Prescale1024, ExternalFalling, ExternalRising,
}

// Divisor returns the system clock division factor, or 0 when the counter
// is stopped or clocked from the T1 pin.
func (p Prescaler) Divisor() uint32 {
	switch p {
	case Prescale1:
		return 1
	case Prescale8:
		return 8
	case Prescale64:
		return 64
	case Prescale256:
		return 256
	case Prescale1024:
		return 1024
	}
	return 0
}

// External reports whether the counter is clocked from the T1 pin.
func (p Prescaler) External() bool {
	return p == ExternalFalling || p == ExternalRising
}

func (p Prescaler) String() string {
	switch p {
	case NoClock:
		return "off"
	case Prescale1:
		return "clk/1"
	case Prescale8:
		return "clk/8"
	case Prescale64:
		return "clk/64"
	case Prescale256:
		return "clk/256"
	case Prescale1024:
		return "clk/1024"
	case ExternalFalling:
		return "t1-falling"
	case ExternalRising:
		return "t1-rising"
	}
	return "unknown"
}

// ParsePrescaler maps a division factor or a String() name to a Prescaler.
func ParsePrescaler(s string) (Prescaler, bool) {
	switch s {
	case "0", "off":
		return NoClock, true
	case "1":
		return Prescale1, true
	case "8":
		return Prescale8, true
	case "64":
		return Prescale64, true
	case "256":
		return Prescale256, true
	case "1024":
		return Prescale1024, true
	}
	for _, p := range Prescalers {
		if p.String() == s {
			return p, true
		}
	}
	return NoClock, false
}

// InterruptEnable gates the interrupt source belonging to the active mode.
type InterruptEnable uint8

const (
	InterruptDisabled InterruptEnable = iota
	InterruptEnabled
)

// Config is consumed by Init and not retained.
type Config struct {
	Mode      Mode
	Interrupt InterruptEnable
}
