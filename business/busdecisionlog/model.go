package busdecisionlog

import "time"

// Decision is one decision cycle as it is stored.
type Decision struct {
	Timestamp        time.Time
	TemperatureC     int64
	TemperatureValid bool
	RuleName         string
	Command          string
	Status           string
	Wrote            bool

	//these are filled in by the Handler, or when read back from a store
	DbAutoId            int
	ExecutionIdentifier string
	Hostname            string
}
