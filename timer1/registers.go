package timer1

// Timer/Counter1 register addresses in the ATmega32 data space.
const (
	AddrTCCR1A = 0x4F
	AddrTCCR1B = 0x4E
	AddrTCNT1H = 0x4D
	AddrTCNT1L = 0x4C // TCNT1 as a 16-bit pair
	AddrOCR1AH = 0x4B
	AddrOCR1AL = 0x4A // OCR1A as a 16-bit pair
	AddrTIFR   = 0x58
	AddrTIMSK  = 0x59
)

// TCCR1A - Timer/Counter1 Control Register A
const (
	WGM10  = 0
	WGM11  = 1
	FOC1B  = 2
	FOC1A  = 3
	COM1B0 = 4
	COM1B1 = 5
	COM1A0 = 6
	COM1A1 = 7
)

// TCCR1B - Timer/Counter1 Control Register B
const (
	CS10  = 0
	CS11  = 1
	CS12  = 2
	WGM12 = 3
	WGM13 = 4
	ICES1 = 6
	ICNC1 = 7
)

// TIMSK - Timer Interrupt Mask Register (Timer1 bits only)
const (
	TOIE1  = 2 // Overflow interrupt enable
	OCIE1B = 3 // Output compare B match interrupt enable
	OCIE1A = 4 // Output compare A match interrupt enable
	TICIE1 = 5 // Input capture interrupt enable
)

// TIFR - Timer Interrupt Flag Register (Timer1 bits only)
const (
	TOV1  = 2
	OCF1B = 3
	OCF1A = 4
	ICF1  = 5
)

// Field masks
const (
	WGMMaskA      uint8 = 1<<WGM11 | 1<<WGM10
	WGMMaskB      uint8 = 1<<WGM13 | 1<<WGM12
	ClockMask     uint8 = 1<<CS12 | 1<<CS11 | 1<<CS10
	InterruptMask uint8 = 1<<TOIE1 | 1<<OCIE1A
)

// Interrupt vector numbers (0-based, RESET = 0).
const (
	IRQCompareA = 7
	IRQOverflow = 9
)

// Register8 is an 8-bit I/O register. *volatile.Register8 satisfies it.
type Register8 interface {
	Get() uint8
	Set(value uint8)
	SetBits(value uint8)
	ClearBits(value uint8)
}

// Register16 is a 16-bit register pair accessed as one value.
type Register16 interface {
	Get() uint16
	Set(value uint16)
}

// Registers is the set of Timer1 registers the driver touches.
type Registers struct {
	TCCR1A Register8
	TCCR1B Register8
	TIMSK  Register8
	TCNT1  Register16
	OCR1A  Register16
}
