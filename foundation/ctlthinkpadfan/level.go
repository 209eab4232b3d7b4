package ctlthinkpadfan

// Level is a fan speed the driver understands.
type Level int

const (
	Level0 Level = iota + 1
	Level1
	Level2
	Level3
	Level4
	Level5
	Level6
	Level7
	FullSpeed
	Auto
)

// Levels lists every valid Level in ascending order.
var Levels = []Level{Level0, Level1, Level2, Level3, Level4, Level5, Level6, Level7, FullSpeed, Auto}

// String returns the command the control file expects for this level.
func (l Level) String() string {
	switch l {
	case Level0:
		return "level 0"
	case Level1:
		return "level 1"
	case Level2:
		return "level 2"
	case Level3:
		return "level 3"
	case Level4:
		return "level 4"
	case Level5:
		return "level 5"
	case Level6:
		return "level 6"
	case Level7:
		return "level 7"
	case FullSpeed:
		return "level full-speed"
	case Auto:
		return "level auto"
	default:
		return ""
	}
}

// ParseLevel maps a config token to a Level. Anything unrecognized means
// Auto so a typo hands control back to the firmware.
func ParseLevel(token string) Level {
	switch token {
	case "0":
		return Level0
	case "1":
		return Level1
	case "2":
		return Level2
	case "3":
		return Level3
	case "4":
		return Level4
	case "5":
		return Level5
	case "6":
		return Level6
	case "7":
		return Level7
	case "full-speed":
		return FullSpeed
	default:
		return Auto
	}
}
