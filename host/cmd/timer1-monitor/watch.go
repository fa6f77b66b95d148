package main

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"avrtimer/protocol"
)

var errWatchUsage = errors.New("usage: watch [on|off]")

// eventPrinter prints events while watching is on. The monitor calls print
// from its reader goroutine while the prompt toggles it.
type eventPrinter struct {
	out io.Writer
	on  atomic.Bool
}

func (p *eventPrinter) print(ev *protocol.EventMessage) {
	if p.on.Load() {
		fmt.Fprintf(p.out, "\n[%s] seq=%d count=%d dropped=%d\n", ev.Kind, ev.Seq, ev.Counter, ev.Dropped)
	}
}

// command applies the arguments of "watch"; no argument flips the state.
func (p *eventPrinter) command(args []string) (bool, error) {
	switch {
	case len(args) == 0:
		for {
			cur := p.on.Load()
			if p.on.CompareAndSwap(cur, !cur) {
				return !cur, nil
			}
		}
	case args[0] == "on":
		p.on.Store(true)
	case args[0] == "off":
		p.on.Store(false)
	default:
		return p.on.Load(), errWatchUsage
	}
	return p.on.Load(), nil
}
