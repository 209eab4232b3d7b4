// Package ctlthinkpadfan drives the fan through the thinkpad_acpi control
// file.
package ctlthinkpadfan

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// DefaultDevicePath is where thinkpad_acpi exposes fan control.
const DefaultDevicePath = "/proc/acpi/ibm/fan"

// FallbackCommand is written when no temperature could be read. Unlike the
// Level commands it carries no "level " prefix.
const FallbackCommand = "full-speed"

var (
	ErrDeviceNotFound = errors.New("fan control device does not exist")
	ErrDeviceAccess   = errors.New("fan control device can't be opened")
	ErrWrite          = errors.New("fan control write failed")
)

// FatalError means the device can't be driven at all. Callers must stop
// instead of carrying on, nothing they do will reach the fan.
type FatalError struct {
	Path string
	Hint string
	Kind error
	Err  error
}

func (e *FatalError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Path, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Hint != "" {
		msg += ". " + e.Hint
	}
	return msg
}

func (e *FatalError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// IsFatal reports whether err, or anything it wraps, is a *FatalError.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}

type Device struct {
	path string
}

func New(path string) (*Device, error) {
	if path == "" {
		return nil, fmt.Errorf("ctlthinkpadfan: device path is required")
	}
	return &Device{path: path}, nil
}

func (d *Device) Path() string {
	return d.path
}

// Write sends one command to the control file. The file is opened read-write
// without create or truncate since it's a driver pseudo-file.
func (d *Device) Write(command string) error {
	if _, err := os.Stat(d.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &FatalError{Path: d.path, Kind: ErrDeviceNotFound, Hint: "Is thinkpad_acpi loaded properly?"}
		}
		return &FatalError{Path: d.path, Kind: ErrDeviceAccess, Err: err, Hint: "do you have sudo access?"}
	}

	f, err := os.OpenFile(d.path, os.O_RDWR, 0)
	if err != nil {
		return &FatalError{Path: d.path, Kind: ErrDeviceAccess, Err: err, Hint: "do you have sudo access?"}
	}

	_, err = f.WriteString(command)
	cerr := f.Close()
	if err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %q: %v (did you enable fan_control=1?)", ErrWrite, d.path, command, err)
	}
	return nil
}

// FullSpeedSupported reports whether the driver advertises the full-speed
// level. Any read problem counts as unsupported.
func (d *Device) FullSpeedSupported() bool {
	b, err := os.ReadFile(d.path)
	if err != nil {
		return false
	}
	return strings.Contains(string(b), "full-speed")
}
