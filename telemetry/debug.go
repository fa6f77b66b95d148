package telemetry

// DebugWriter receives one line of diagnostic text.
type DebugWriter func(string)

func discard(string) {}

var (
	// The firmware never installs a writer: its UART carries frames only.
	debugOut     DebugWriter = discard
	debugEnabled bool
)

// SetDebugWriter routes diagnostics to w. A nil w discards them.
func SetDebugWriter(w DebugWriter) {
	if w == nil {
		w = discard
	}
	debugOut = w
}

// SetDebugEnabled turns diagnostics on or off.
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// DebugPrintln emits msg when diagnostics are enabled.
func DebugPrintln(msg string) {
	if debugEnabled {
		debugOut(msg)
	}
}
