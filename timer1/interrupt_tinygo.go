//go:build tinygo

package timer1

import "runtime/interrupt"

type criticalState = interrupt.State

// enterCritical masks interrupts (cli) until the matching exitCritical.
func enterCritical() criticalState {
	return interrupt.Disable()
}

func exitCritical(s criticalState) {
	interrupt.Restore(s)
}
