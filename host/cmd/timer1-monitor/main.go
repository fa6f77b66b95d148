package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/shlex"

	"avrtimer/host/monitor"
	"avrtimer/host/serial"
	"avrtimer/telemetry"
	"avrtimer/timer1"
)

var (
	device    = flag.String("device", "/dev/ttyUSB0", "Serial device path")
	baud      = flag.Int("baud", serial.DefaultBaud, "Baud rate")
	simulate  = flag.Bool("sim", false, "Run the firmware logic on a simulated Timer1 instead of a board")
	mode      = flag.String("mode", "ctc", "Simulated timer mode: normal or ctc")
	prescaler = flag.String("prescaler", "64", "Simulated prescaler: 1, 8, 64, 256, 1024")
	threshold = flag.Uint("threshold", 62500, "Simulated compare threshold (OCR1A)")
	period    = flag.Duration("period", 0, "Simulated compare period; overrides -threshold")
	cpuHz     = flag.Uint("cpu-hz", 16000000, "Simulated CPU clock")
	verbose   = flag.Bool("verbose", false, "Enable verbose output")
)

func main() {
	flag.Parse()

	fmt.Println("Timer1 Monitor - ATmega32 Timer/Counter1 telemetry")
	fmt.Println("==================================================")

	if *verbose {
		telemetry.SetDebugWriter(func(s string) { fmt.Fprintln(os.Stderr, s) })
		telemetry.SetDebugEnabled(true)
	}

	var src io.ReadCloser
	if *simulate {
		opts, err := simOptions()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
		fmt.Printf("Simulating %s at %s, threshold %d\n", opts.Mode, opts.Prescaler, opts.Threshold)
		src = startSimulation(opts)
	} else {
		cfg := serial.DefaultConfig(*device)
		cfg.Baud = *baud
		fmt.Printf("Opening %s at %d baud...\n", cfg.Device, cfg.Baud)
		port, err := serial.Open(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		src = port
	}
	defer src.Close()

	mon := monitor.New(src)
	watch := &eventPrinter{out: os.Stdout}
	mon.OnEvent(watch.print)

	runErr := make(chan error, 1)
	go func() { runErr <- mon.Run() }()

	fmt.Println("Enter commands (type 'help' for available commands, 'quit' to exit):")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		args, err := shlex.Split(scanner.Text())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		if len(args) == 0 {
			continue
		}

		switch args[0] {
		case "quit", "exit", "q":
			fmt.Println("Goodbye!")
			return

		case "help", "?":
			printHelp()

		case "stats":
			mon.Stats().Print(os.Stdout)

		case "period":
			printPeriod(mon.Stats())

		case "reset":
			mon.Reset()
			fmt.Println("Counters cleared")

		case "watch":
			on, err := watch.command(args[1:])
			if err != nil {
				fmt.Println(err)
				continue
			}
			fmt.Printf("Watch %v\n", on)

		default:
			fmt.Printf("Unknown command: %s (type 'help' for available commands)\n", args[0])
		}

		select {
		case err := <-runErr:
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			fmt.Println("Stream closed")
			mon.Stats().Print(os.Stdout)
			return
		default:
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("\nAvailable commands:")
	fmt.Println("  help           - Show this help message")
	fmt.Println("  stats          - Print telemetry summary")
	fmt.Println("  period         - Compare expected and measured event period")
	fmt.Println("  reset          - Clear counters")
	fmt.Println("  watch [on|off] - Print every event as it arrives")
	fmt.Println("  quit/exit/q    - Exit the program")
	fmt.Println()
}

func printPeriod(st monitor.Stats) {
	expected, ok := st.ExpectedPeriod()
	if !ok {
		fmt.Println("No configuration received yet")
		return
	}
	measured, ok := st.MeasuredPeriod()
	if !ok {
		fmt.Printf("Expected %v, not enough events to measure\n", expected)
		return
	}
	drift := float64(measured-expected) / float64(expected) * 100
	fmt.Printf("Expected %v, measured %v (%+.2f%%)\n", expected, measured, drift)
}

// simOptions turns the -mode/-prescaler/-threshold/-period flags into
// telemetry options.
func simOptions() (telemetry.Options, error) {
	opts := telemetry.Options{
		Interrupts: timer1.InterruptEnabled,
		CPUHz:      uint32(*cpuHz),
	}

	switch strings.ToLower(*mode) {
	case "normal":
		opts.Mode = timer1.ModeNormal
	case "ctc", "compare":
		opts.Mode = timer1.ModeCompareMatch
	default:
		return opts, fmt.Errorf("unknown mode %q", *mode)
	}

	p, ok := timer1.ParsePrescaler(*prescaler)
	if !ok || p.Divisor() == 0 {
		return opts, fmt.Errorf("prescaler %q has no internal clock rate", *prescaler)
	}
	opts.Prescaler = p

	if *threshold > 0xFFFF {
		return opts, fmt.Errorf("threshold %d does not fit in 16 bits", *threshold)
	}
	opts.Threshold = uint16(*threshold)

	if *period > 0 {
		th, ok := timer1.ThresholdFor(opts.CPUHz, p, *period)
		if !ok {
			return opts, fmt.Errorf("period %v is out of range at %s", *period, p)
		}
		opts.Threshold = th
	}
	return opts, nil
}

// startSimulation runs the firmware loop against a simulated Timer1 in
// real time and returns the framed telemetry it produces.
func startSimulation(opts telemetry.Options) io.ReadCloser {
	pr, pw := io.Pipe()
	go func() {
		err := runSimulation(opts, pw, 10*time.Millisecond)
		pw.CloseWithError(err)
	}()
	return pr
}
