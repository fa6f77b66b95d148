//go:build !tinygo

package timer1

import "sync"

type criticalState struct{}

// A simulated peripheral may dispatch from another goroutine, so the
// critical section is a lock.
var critical sync.Mutex

func enterCritical() criticalState {
	critical.Lock()
	return criticalState{}
}

func exitCritical(criticalState) {
	critical.Unlock()
}
