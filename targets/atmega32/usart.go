//go:build tinygo && avr

package main

import (
	"runtime/volatile"
	"unsafe"
)

// ATmega32 USART memory map (data space addresses)
const (
	addrUBRRL = 0x29
	addrUCSRB = 0x2A
	addrUCSRA = 0x2B
	addrUDR   = 0x2C
	addrUCSRC = 0x40 // shared with UBRRH, selected by URSEL

	bitUDRE  = 5 // UCSRA: data register empty
	bitTXEN  = 3 // UCSRB
	bitURSEL = 7 // UCSRC
	bitUCSZ1 = 2
	bitUCSZ0 = 1
)

var (
	ubrrl = (*volatile.Register8)(unsafe.Pointer(uintptr(addrUBRRL)))
	ucsrb = (*volatile.Register8)(unsafe.Pointer(uintptr(addrUCSRB)))
	ucsra = (*volatile.Register8)(unsafe.Pointer(uintptr(addrUCSRA)))
	udr   = (*volatile.Register8)(unsafe.Pointer(uintptr(addrUDR)))
	ucsrc = (*volatile.Register8)(unsafe.Pointer(uintptr(addrUCSRC)))
)

// usart is a transmit-only polled writer on the on-chip USART.
type usart struct{}

// InitUSART configures 8N1 at the given baud for a cpuHz clock.
func InitUSART(cpuHz, baud uint32) usart {
	ubrr := cpuHz/(16*baud) - 1
	ubrrl.Set(uint8(ubrr))
	ucsrc.Set(1<<bitURSEL | 1<<bitUCSZ1 | 1<<bitUCSZ0)
	ucsrb.Set(1 << bitTXEN)
	return usart{}
}

// Write blocks until every byte is in the transmit register.
func (usart) Write(p []byte) (int, error) {
	for _, b := range p {
		for !ucsra.HasBits(1 << bitUDRE) {
		}
		udr.Set(b)
	}
	return len(p), nil
}
