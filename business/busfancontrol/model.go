package busfancontrol

import (
	"fmt"

	"github.com/jroedel/nvfans/business/busconfiggopher"
)

// Status is the outcome of one decision cycle.
type Status int

const (
	StatusNotSet Status = iota
	StatusSet
	StatusInvalid
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusNotSet:
		return "not set"
	case StatusSet:
		return "set"
	case StatusInvalid:
		return "invalid"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result describes what a decision cycle saw and did.
type Result struct {
	Status Status

	//TemperatureC is only meaningful when TemperatureValid is set
	TemperatureC     int64
	TemperatureValid bool

	//Rule is the rule that matched or was already active
	Rule    busconfiggopher.Rule
	HasRule bool

	//Command is what was sent, or would have been sent, to the device
	Command string
	Wrote   bool
}
