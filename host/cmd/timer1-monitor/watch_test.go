package main

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avrtimer/protocol"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestEventPrinterCommand(t *testing.T) {
	var out lockedBuffer
	p := &eventPrinter{out: &out}
	ev := &protocol.EventMessage{Kind: protocol.EventCompareMatch, Seq: 3, Counter: 99}

	p.print(ev)
	assert.Empty(t, out.String())

	on, err := p.command([]string{"on"})
	require.NoError(t, err)
	assert.True(t, on)
	p.print(ev)
	assert.Contains(t, out.String(), "[compare] seq=3 count=99 dropped=0")

	on, err = p.command(nil)
	require.NoError(t, err)
	assert.False(t, on)

	on, err = p.command(nil)
	require.NoError(t, err)
	assert.True(t, on)

	on, err = p.command([]string{"maybe"})
	assert.ErrorIs(t, err, errWatchUsage)
	assert.True(t, on)

	_, err = p.command([]string{"off"})
	require.NoError(t, err)
	before := out.String()
	p.print(ev)
	assert.Equal(t, before, out.String())
}

func TestEventPrinterToggleWhileReceiving(t *testing.T) {
	var out lockedBuffer
	p := &eventPrinter{out: &out}
	ev := &protocol.EventMessage{Kind: protocol.EventOverflow, Seq: 1}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			p.print(ev)
		}
	}()

	for i := 0; i < 1000; i++ {
		_, err := p.command(nil)
		require.NoError(t, err)
	}
	wg.Wait()

	// An even number of flips ends where it started.
	assert.False(t, p.on.Load())
}
