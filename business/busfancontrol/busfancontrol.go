// Package busfancontrol decides which fan level the current temperature
// calls for and only talks to the device when that decision changes.
package busfancontrol

import (
	"fmt"
	"slices"

	"github.com/jroedel/nvfans/business/busconfiggopher"
	"github.com/jroedel/nvfans/foundation/ctlthinkpadfan"
)

type Logger interface {
	Printf(string, ...any)
}

type TemperatureReader interface {
	// MaxTemperature returns the hottest sensor in whole degrees Celsius, ok
	// is false when nothing could be read
	MaxTemperature() (celsius int64, ok bool)
}

type FanWriter interface {
	Write(command string) error
}

type Controller struct {
	//required
	reader TemperatureReader
	fan    FanWriter
	logger Logger

	//immutable after New
	rules []busconfiggopher.Rule

	//internal; nil until a rule has been written successfully
	current *busconfiggopher.Rule
}

func New(reader TemperatureReader, fan FanWriter, rules []busconfiggopher.Rule, logger Logger) (*Controller, error) {
	if reader == nil {
		return nil, fmt.Errorf("controller construct: TemperatureReader is required")
	}
	if fan == nil {
		return nil, fmt.Errorf("controller construct: FanWriter is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("controller construct: Logger is required")
	}
	return &Controller{reader: reader, fan: fan, rules: slices.Clone(rules), logger: logger}, nil
}

func (c *Controller) Rules() []busconfiggopher.Rule {
	return slices.Clone(c.rules)
}

// CurrentRule returns the rule last written to the device.
func (c *Controller) CurrentRule() (busconfiggopher.Rule, bool) {
	if c.current == nil {
		return busconfiggopher.Rule{}, false
	}
	return *c.current, true
}

// SetFanLevel runs one decision cycle. The returned error is non-nil only
// together with StatusError; use ctlthinkpadfan.IsFatal to tell a device that
// can never be driven from a write that failed this once.
func (c *Controller) SetFanLevel() (Result, error) {
	celsius, ok := c.reader.MaxTemperature()
	res := Result{TemperatureC: celsius, TemperatureValid: ok}

	if !ok {
		//no sensor to go by, so be loud rather than sorry. current is left alone
		res.Command = ctlthinkpadfan.FallbackCommand
		if err := c.fan.Write(ctlthinkpadfan.FallbackCommand); err != nil {
			res.Status = StatusError
			return res, fmt.Errorf("write fallback %q: %w", ctlthinkpadfan.FallbackCommand, err)
		}
		res.Wrote = true
		res.Status = StatusInvalid
		c.logger.Printf("[fan] Couldn't find any valid temperature, fan set to %s", ctlthinkpadfan.FallbackCommand)
		return res, nil
	}

	for _, rule := range c.rules {
		//the active rule wins as soon as the scan reaches it, even before a
		//range check on an earlier rule could have matched
		if c.current != nil && *c.current == rule {
			res.Rule, res.HasRule = rule, true
			res.Command = rule.Speed.String()
			res.Status = StatusSet
			return res, nil
		}
		if !rule.Contains(celsius) {
			continue
		}

		res.Rule, res.HasRule = rule, true
		res.Command = rule.Speed.String()
		if err := c.fan.Write(res.Command); err != nil {
			res.Status = StatusError
			return res, fmt.Errorf("apply rule %q: %w", rule.Name, err)
		}
		applied := rule
		c.current = &applied
		res.Wrote = true
		res.Status = StatusSet
		c.logger.Printf("[fan] Temperature now %dC, fan set to %s", celsius, res.Command)
		return res, nil
	}

	res.Status = StatusInvalid
	c.logger.Printf("[fan] Temperature %dC is outside every configured range", celsius)
	return res, nil
}
