package printer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"
)

// Type names accepted by NewFromConfig
const (
	TypeUSB     = "usb"
	TypeNetwork = "network"
	TypeNone    = "none"
)

var ErrNoPrinter = errors.New("printer: no printer configured")

// Printer sends raw ESC/POS data to a thermal printer
type Printer interface {
	Print(ctx context.Context, data []byte) error
	IsConnected(ctx context.Context) bool
	Type() string
}

// usbPrinter writes to a device file such as /dev/usb/lp0, opening it per job
type usbPrinter struct {
	path string
}

func NewUSBPrinter(devicePath string) Printer {
	return &usbPrinter{path: devicePath}
}

func (p *usbPrinter) Print(_ context.Context, data []byte) error {
	f, err := os.OpenFile(p.path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("printer: open %s: %w", p.path, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("printer: write %s: %w", p.path, err)
	}
	return nil
}

func (p *usbPrinter) IsConnected(context.Context) bool {
	_, err := os.Stat(p.path)
	return err == nil
}

func (p *usbPrinter) Type() string { return TypeUSB }

// networkPrinter dials a raw TCP port (usually 9100) per job
type networkPrinter struct {
	address string
	dialer  net.Dialer
}

func NewNetworkPrinter(address string) Printer {
	return &networkPrinter{
		address: address,
		dialer:  net.Dialer{Timeout: 5 * time.Second},
	}
}

func (p *networkPrinter) Print(ctx context.Context, data []byte) error {
	conn, err := p.dialer.DialContext(ctx, "tcp", p.address)
	if err != nil {
		return fmt.Errorf("printer: connect %s: %w", p.address, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(10 * time.Second)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetWriteDeadline(deadline)

	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("printer: write %s: %w", p.address, err)
	}
	return nil
}

func (p *networkPrinter) IsConnected(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	conn, err := p.dialer.DialContext(ctx, "tcp", p.address)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

func (p *networkPrinter) Type() string { return TypeNetwork }

type nullPrinter struct{}

// NewNullPrinter is used when no hardware is configured. Print reports
// ErrNoPrinter so callers can still return the formatted receipt.
func NewNullPrinter() Printer {
	return nullPrinter{}
}

func (nullPrinter) Print(context.Context, []byte) error { return ErrNoPrinter }
func (nullPrinter) IsConnected(context.Context) bool    { return false }
func (nullPrinter) Type() string                        { return TypeNone }

// NewFromConfig creates the Printer for printerType (usb, network or none)
func NewFromConfig(printerType, devicePath, address string) (Printer, error) {
	switch printerType {
	case TypeUSB:
		if devicePath == "" {
			return nil, errors.New("printer: device path is required for usb printers")
		}
		return NewUSBPrinter(devicePath), nil
	case TypeNetwork:
		if address == "" {
			return nil, errors.New("printer: address is required for network printers")
		}
		return NewNetworkPrinter(address), nil
	case TypeNone, "":
		return NewNullPrinter(), nil
	default:
		return nil, fmt.Errorf("printer: unknown printer type %q (use usb, network, or none)", printerType)
	}
}
