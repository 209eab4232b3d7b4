package busconfiggopher

import (
	"fmt"

	"github.com/jroedel/nvfans/foundation/ctlthinkpadfan"
)

// Rule maps an inclusive temperature range, in whole degrees Celsius, to a
// fan level.
type Rule struct {
	Name  string
	Low   int64
	High  int64
	Speed ctlthinkpadfan.Level
}

func (r Rule) Contains(celsius int64) bool {
	return r.Low <= celsius && celsius <= r.High
}

func (r Rule) String() string {
	return fmt.Sprintf("%s [%d..%d] -> %s", r.Name, r.Low, r.High, r.Speed)
}

// DefaultRules is used when there's no config file, or it can't be trusted.
// Hottest first.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "level 7", Low: 81, High: 100, Speed: ctlthinkpadfan.Level7},
		{Name: "level 6", Low: 76, High: 80, Speed: ctlthinkpadfan.Level6},
		{Name: "level 5", Low: 71, High: 75, Speed: ctlthinkpadfan.Level5},
		{Name: "level auto", Low: 0, High: 70, Speed: ctlthinkpadfan.Auto},
	}
}

type ConfigSource int

const (
	ConfigSourceDefault ConfigSource = iota + 1
	ConfigSourceLocalFile
)

func (c ConfigSource) String() string {
	switch c {
	case ConfigSourceDefault:
		return "built-in defaults"
	case ConfigSourceLocalFile:
		return "local file"
	default:
		return fmt.Sprintf("ConfigSource(%d)", int(c))
	}
}
