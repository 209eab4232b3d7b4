// Package hwmontherm reads the temperature inputs the kernel exposes under
// /sys/class/hwmon and reduces them to the hottest whole-degree value.
package hwmontherm

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultSensorGlob matches every temperature input of every hwmon chip.
const DefaultSensorGlob = "/sys/class/hwmon/hwmon*/temp*_input"

// Logger only gets per-path noise, which repeats every cycle for a dead
// sensor, so it goes out at debug level.
type Logger interface {
	Debugf(string, ...any)
}

// Reading is one sensor file sampled once. Valid is false when the file
// couldn't be opened or didn't hold an integer.
type Reading struct {
	Path         string
	MilliCelsius int64
	Valid        bool
}

type Reader struct {
	glob   string
	logger Logger
}

func New(glob string, logger Logger) (*Reader, error) {
	if glob == "" {
		return nil, fmt.Errorf("hwmontherm: sensor glob is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("hwmontherm: logger is required")
	}
	//filepath.Match only reports a malformed pattern, which is all we want to know here
	if _, err := filepath.Match(glob, ""); err != nil {
		return nil, fmt.Errorf("hwmontherm: sensor glob %q: %w", glob, err)
	}
	return &Reader{glob: glob, logger: logger}, nil
}

func (r *Reader) Glob() string {
	return r.glob
}

// ReadMilliCelsius reads a single sensor file. Sensors can disappear at any
// time, so a missing or garbled file is reported through ok, not an error.
func ReadMilliCelsius(path string) (milliCelsius int64, ok bool) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	return parseMilliCelsius(b)
}

func parseMilliCelsius(b []byte) (int64, bool) {
	s := strings.TrimRight(string(b), "\n")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// EnumerateSensorPaths expands the sensor glob. The order is whatever the
// filesystem gives us.
func (r *Reader) EnumerateSensorPaths() ([]string, error) {
	paths, err := filepath.Glob(r.glob)
	if err != nil {
		return nil, fmt.Errorf("expand %q: %w", r.glob, err)
	}
	return paths, nil
}

// ReadAll samples every sensor matched by the glob, valid or not.
func (r *Reader) ReadAll() []Reading {
	paths, err := r.EnumerateSensorPaths()
	if err != nil {
		r.logger.Debugf("[hwmon] %s", err)
		return nil
	}
	readings := make([]Reading, 0, len(paths))
	for _, path := range paths {
		v, ok := ReadMilliCelsius(path)
		if !ok {
			r.logger.Debugf("[hwmon] skipping %s: no readable temperature", path)
		}
		readings = append(readings, Reading{Path: path, MilliCelsius: v, Valid: ok})
	}
	return readings
}

// MaxTemperature returns the hottest sensor in whole degrees Celsius. ok is
// false when not a single sensor could be read.
func (r *Reader) MaxTemperature() (celsius int64, ok bool) {
	return MaxCelsius(r.ReadAll())
}

// MaxCelsius reduces readings to the maximum valid value, truncated to whole
// degrees. Invalid readings are ignored.
func MaxCelsius(readings []Reading) (int64, bool) {
	var max int64
	found := false
	for _, reading := range readings {
		if !reading.Valid {
			continue
		}
		if !found || reading.MilliCelsius > max {
			max = reading.MilliCelsius
			found = true
		}
	}
	if !found {
		return 0, false
	}
	return MilliToCelsius(max), true
}

// MilliToCelsius drops the sub-degree part, truncating toward zero.
func MilliToCelsius(milliCelsius int64) int64 {
	return milliCelsius / 1000
}
