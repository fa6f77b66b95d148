package serial

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/tarm/serial"
)

// nativePort is a tarm/serial port. tarm reports a read timeout as
// (0, io.EOF); nativePort turns that into an empty read so the frame
// reader keeps polling.
type nativePort struct {
	*serial.Port
	polling bool
}

// Open opens cfg.Device in 8N1.
func Open(cfg *Config) (Port, error) {
	if cfg == nil {
		return nil, errors.New("serial: nil config")
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		Size:        8,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
		ReadTimeout: time.Duration(cfg.ReadTimeout) * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Device, err)
	}
	return &nativePort{Port: port, polling: cfg.ReadTimeout > 0}, nil
}

func (p *nativePort) Read(b []byte) (int, error) {
	n, err := p.Port.Read(b)
	if n == 0 && p.polling && errors.Is(err, io.EOF) {
		return 0, nil
	}
	return n, err
}
