package timer1_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avrtimer/sim"
	"avrtimer/timer1"
)

func newDriver() (*timer1.Driver, *sim.Peripheral) {
	p := sim.New()
	d := timer1.New(p.Registers())
	p.Attach(d)
	p.Sei()
	return d, p
}

func TestStartWritesClockSelectOnly(t *testing.T) {
	for _, presc := range timer1.Prescalers {
		t.Run(presc.String(), func(t *testing.T) {
			d, p := newDriver()
			// Unrelated bits: ICNC1, ICES1, WGM12 and a stale clock select.
			p.TCCR1B.Set(1<<timer1.ICNC1 | 1<<timer1.ICES1 | 1<<timer1.WGM12 | 0b101)
			p.TCCR1A.Set(0xA5)
			p.TIMSK.Set(1 << timer1.OCIE1A)

			d.Start(presc)

			got := p.TCCR1B.Get()
			require.Equal(t, uint8(presc), got&timer1.ClockMask)
			require.Equal(t, uint8(1<<timer1.ICNC1|1<<timer1.ICES1|1<<timer1.WGM12), got&^timer1.ClockMask)
			require.Equal(t, uint8(0xA5), p.TCCR1A.Get())
			require.Equal(t, uint8(1<<timer1.OCIE1A), p.TIMSK.Get())
			require.Equal(t, presc, d.Prescaler())
		})
	}
}

func TestStopClearsClockSelect(t *testing.T) {
	for _, presc := range timer1.Prescalers {
		d, p := newDriver()
		d.Init(timer1.Config{Mode: timer1.ModeCompareMatch})
		d.Start(presc)
		d.Stop()

		require.Equal(t, uint8(0), p.TCCR1B.Get()&timer1.ClockMask, "prescaler %s", presc)
		require.Equal(t, uint8(1<<timer1.WGM12), p.TCCR1B.Get(), "mode bits changed after stop from %s", presc)
		require.False(t, d.Running())
	}
}

func TestStopIsIdempotentAndKeepsCounter(t *testing.T) {
	d, p := newDriver()
	d.Init(timer1.Config{Mode: timer1.ModeNormal})
	d.Start(timer1.Prescale8)
	p.Step(8 * 100)
	require.Equal(t, uint16(100), d.GetCounterValue())

	d.Stop()
	d.Stop()
	p.Step(8 * 100)
	assert.Equal(t, uint16(100), d.GetCounterValue())
	assert.Equal(t, timer1.NoClock, d.Prescaler())
}

func TestStartNoClockEqualsStop(t *testing.T) {
	d, p := newDriver()
	d.Start(timer1.Prescale64)
	d.Start(timer1.NoClock)
	assert.Equal(t, uint8(0), p.TCCR1B.Get()&timer1.ClockMask)
	assert.False(t, d.Running())
}

func TestStartReprogramsRateWithoutTouchingCounter(t *testing.T) {
	d, p := newDriver()
	d.Init(timer1.Config{Mode: timer1.ModeNormal})
	d.Start(timer1.Prescale1)
	p.Step(10)
	d.Start(timer1.Prescale8)
	require.Equal(t, uint16(10), d.GetCounterValue())
	p.Step(16)
	require.Equal(t, uint16(12), d.GetCounterValue())
	mode, ok := d.Mode()
	require.True(t, ok)
	require.Equal(t, timer1.ModeNormal, mode)
}

func TestInitNormalEnabled(t *testing.T) {
	d, p := newDriver()
	p.TCCR1A.Set(0xFF)
	p.TCCR1B.Set(0xFF)
	p.TCNT1.Set(0x1234)

	d.Init(timer1.Config{Mode: timer1.ModeNormal, Interrupt: timer1.InterruptEnabled})

	assert.Equal(t, uint8(0), p.TCCR1A.Get()&timer1.WGMMaskA)
	assert.Equal(t, uint8(0), p.TCCR1B.Get()&timer1.WGMMaskB)
	// COM/FOC bits and clock select are another axis.
	assert.Equal(t, uint8(0xFC), p.TCCR1A.Get())
	assert.Equal(t, uint8(0xFF)&^timer1.WGMMaskB, p.TCCR1B.Get())
	assert.NotZero(t, p.TIMSK.Get()&(1<<timer1.TOIE1))
	assert.Zero(t, p.TIMSK.Get()&(1<<timer1.OCIE1A))
	assert.Equal(t, uint16(0), d.GetCounterValue())
}

func TestInitCompareMatchDisabled(t *testing.T) {
	d, p := newDriver()
	p.TIMSK.Set(1<<timer1.TOIE1 | 1<<timer1.OCIE1A | 1<<timer1.OCIE1B)
	p.TCCR1B.Set(1 << timer1.WGM13)
	p.TCNT1.Set(0xFFFE)

	d.Init(timer1.Config{Mode: timer1.ModeCompareMatch, Interrupt: timer1.InterruptDisabled})

	assert.Equal(t, uint8(0), p.TCCR1A.Get()&timer1.WGMMaskA)
	assert.Equal(t, uint8(1<<timer1.WGM12), p.TCCR1B.Get()&timer1.WGMMaskB)
	assert.Zero(t, p.TIMSK.Get()&timer1.InterruptMask)
	assert.Equal(t, uint8(1<<timer1.OCIE1B), p.TIMSK.Get(), "unrelated mask bit cleared")
	assert.Equal(t, uint16(0), d.GetCounterValue())

	mode, ok := d.Mode()
	require.True(t, ok)
	assert.Equal(t, timer1.ModeCompareMatch, mode)
}

func TestInitDisabledClearsBothMaskBitsInNormalMode(t *testing.T) {
	d, p := newDriver()
	p.TIMSK.Set(timer1.InterruptMask)
	d.Init(timer1.Config{Mode: timer1.ModeNormal, Interrupt: timer1.InterruptDisabled})
	assert.Zero(t, p.TIMSK.Get())
}

func TestInitCompareMatchEnabled(t *testing.T) {
	d, p := newDriver()
	d.Init(timer1.Config{Mode: timer1.ModeCompareMatch, Interrupt: timer1.InterruptEnabled})
	assert.Equal(t, uint8(1<<timer1.OCIE1A), p.TIMSK.Get())
}

func TestInitUnknownModeLeavesWaveformBits(t *testing.T) {
	d, p := newDriver()
	p.TCCR1A.Set(0x03)
	p.TCCR1B.Set(0x18)
	p.TCNT1.Set(77)

	d.Init(timer1.Config{Mode: timer1.Mode(9), Interrupt: timer1.InterruptEnabled})

	assert.Equal(t, uint8(0x03), p.TCCR1A.Get())
	assert.Equal(t, uint8(0x18), p.TCCR1B.Get())
	assert.Zero(t, p.TIMSK.Get())
	assert.Equal(t, uint16(0), d.GetCounterValue())
	_, ok := d.Mode()
	assert.False(t, ok)
}

func TestCounterRoundTripWhileStopped(t *testing.T) {
	d, _ := newDriver()
	d.SetCounterValue(0xABCD)
	assert.Equal(t, uint16(0xABCD), d.GetCounterValue())
}

func TestCounterReadsLiveHardware(t *testing.T) {
	d, p := newDriver()
	d.Init(timer1.Config{Mode: timer1.ModeNormal})
	d.SetCounterValue(500)
	d.Start(timer1.Prescale1)
	p.Step(25)
	assert.Equal(t, uint16(525), d.GetCounterValue())
	assert.Equal(t, 2, p.TCNT1.Writes(), "Init and SetCounterValue only")
}

func TestCompareThresholdWritesInNormalMode(t *testing.T) {
	d, p := newDriver()
	d.Init(timer1.Config{Mode: timer1.ModeNormal})
	d.SetCompareThreshold(0x0F0F)
	assert.Equal(t, uint16(0x0F0F), p.OCR1A.Get())
	assert.Equal(t, uint16(0x0F0F), d.GetCompareThreshold())

	// Normal mode still wraps at MAX, not at OCR1A.
	d.Start(timer1.Prescale1)
	p.Step(0x0F0F + 5)
	assert.Equal(t, uint16(0x0F0F+5), d.GetCounterValue())
}

func TestOverflowDispatchRunsOnce(t *testing.T) {
	d, p := newDriver()
	d.Init(timer1.Config{Mode: timer1.ModeNormal, Interrupt: timer1.InterruptEnabled})
	calls := 0
	d.SetOverflowCallback(func() { calls++ })

	d.HandleOverflow()
	assert.Equal(t, 1, calls)

	d.SetCounterValue(0xFFFF)
	d.Start(timer1.Prescale1)
	p.Step(1)
	assert.Equal(t, 2, calls)
	assert.Equal(t, uint16(0), d.GetCounterValue())
}

func TestNilCallbackAbsorbsEvents(t *testing.T) {
	d, p := newDriver()
	d.Init(timer1.Config{Mode: timer1.ModeNormal, Interrupt: timer1.InterruptEnabled})
	calls := 0
	d.SetOverflowCallback(func() { calls++ })
	d.SetOverflowCallback(nil)

	require.NotPanics(t, func() {
		d.HandleOverflow()
		d.HandleCompareMatch()
	})
	assert.Zero(t, calls)

	// The hardware event still fires and its flag is still consumed.
	d.SetCounterValue(0xFFFF)
	d.Start(timer1.Prescale1)
	p.Step(1)
	assert.Equal(t, uint32(1), p.Overflows())
	assert.Zero(t, p.TIFR.Get()&(1<<timer1.TOV1))
	assert.NotZero(t, p.TIMSK.Get()&(1<<timer1.TOIE1), "nil callback must not touch the mask")
}

func TestReplacedCallbackNeverRunsAgain(t *testing.T) {
	d, _ := newDriver()
	var first, second int
	d.SetCompareCallback(func() { first++ })
	d.HandleCompareMatch()
	d.SetCompareCallback(func() { second++ })
	d.HandleCompareMatch()
	d.HandleCompareMatch()

	assert.Equal(t, 1, first)
	assert.Equal(t, 2, second)
}

func TestCallbackSlotsAreIndependent(t *testing.T) {
	d, _ := newDriver()
	var ovf, cmp int
	d.SetOverflowCallback(func() { ovf++ })
	d.SetCompareCallback(func() { cmp++ })
	d.SetCompareCallback(nil)

	d.HandleOverflow()
	d.HandleCompareMatch()
	assert.Equal(t, 1, ovf)
	assert.Zero(t, cmp)
}

func TestCallbackMayReplaceItself(t *testing.T) {
	d, _ := newDriver()
	calls := 0
	d.SetCompareCallback(func() {
		calls++
		d.SetCompareCallback(nil)
	})
	d.HandleCompareMatch()
	d.HandleCompareMatch()
	assert.Equal(t, 1, calls)
}

func TestCompareMatchPeriodicReset(t *testing.T) {
	d, p := newDriver()
	d.Init(timer1.Config{Mode: timer1.ModeCompareMatch, Interrupt: timer1.InterruptEnabled})
	d.SetCompareThreshold(99)
	calls := 0
	d.SetCompareCallback(func() { calls++ })
	d.Start(timer1.Prescale64)

	// One event every (99 + 1) * 64 cycles; the first after 99 * 64.
	p.Step(99 * 64)
	require.Equal(t, 1, calls)
	require.Equal(t, uint16(99), d.GetCounterValue())
	p.Step(64)
	require.Equal(t, uint16(0), d.GetCounterValue())
	p.Step(100 * 64 * 9)
	assert.Equal(t, 10, calls)
	assert.Zero(t, p.Overflows())
}

func TestMaskedEventDoesNotDispatch(t *testing.T) {
	d, p := newDriver()
	d.Init(timer1.Config{Mode: timer1.ModeCompareMatch, Interrupt: timer1.InterruptDisabled})
	d.SetCompareThreshold(9)
	calls := 0
	d.SetCompareCallback(func() { calls++ })
	d.Start(timer1.Prescale1)
	p.Step(50)

	assert.Zero(t, calls)
	assert.Equal(t, uint32(5), p.Matches())
	assert.NotZero(t, p.TIFR.Get()&(1<<timer1.OCF1A), "flag stays pending while masked")
}
