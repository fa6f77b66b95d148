package timer1

import "time"

// ThresholdFor returns the OCR1A value that makes CompareMatch mode fire
// every period on a CPU clocked at cpuHz. ok is false when the prescaler
// has no fixed rate or the period does not fit in 16 bits.
func ThresholdFor(cpuHz uint32, p Prescaler, period time.Duration) (threshold uint16, ok bool) {
	div := p.Divisor()
	if div == 0 || period <= 0 {
		return 0, false
	}
	// A CTC period is (OCR1A + 1) timer clocks.
	clocks := uint64(cpuHz) * uint64(period) / (uint64(div) * uint64(time.Second))
	if clocks == 0 || clocks > 0x10000 {
		return 0, false
	}
	return uint16(clocks - 1), true
}

// CompareMatchPeriod is the interval between compare-match events for a
// given threshold.
func CompareMatchPeriod(cpuHz uint32, p Prescaler, threshold uint16) time.Duration {
	div := p.Divisor()
	if div == 0 || cpuHz == 0 {
		return 0
	}
	clocks := (uint64(threshold) + 1) * uint64(div)
	return time.Duration(clocks * uint64(time.Second) / uint64(cpuHz))
}

// OverflowPeriod is the interval between overflow events in Normal mode
// when the counter free-runs from zero.
func OverflowPeriod(cpuHz uint32, p Prescaler) time.Duration {
	div := p.Divisor()
	if div == 0 || cpuHz == 0 {
		return 0
	}
	return time.Duration(0x10000 * uint64(div) * uint64(time.Second) / uint64(cpuHz))
}
