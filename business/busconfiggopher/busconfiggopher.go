// Package busconfiggopher loads the threshold rules that map temperatures to
// fan levels.
package busconfiggopher

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/jroedel/nvfans/foundation/ctlthinkpadfan"
)

// DefaultConfigPath is the rule file read at startup.
const DefaultConfigPath = "/etc/nvfans.conf"

var ErrMalformedConfig = errors.New("malformed rule config")

type Logger interface {
	Printf(string, ...any)
}

type ConfigGopher struct {
	localConfigPath string
	logger          Logger
}

func New(localConfigPath string, logger Logger) (*ConfigGopher, error) {
	if localConfigPath == "" {
		return nil, fmt.Errorf("ConfigGopher: localConfigPath is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("ConfigGopher: logger is required")
	}
	return &ConfigGopher{localConfigPath: localConfigPath, logger: logger}, nil
}

// FetchRules never fails. A missing file, an unreadable file or a single bad
// number anywhere in the file all mean the built-in defaults.
func (cg *ConfigGopher) FetchRules() ([]Rule, ConfigSource) {
	file, err := os.Open(cg.localConfigPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			cg.logger.Printf("[config] Error opening %s, using default config: %s", cg.localConfigPath, err)
		}
		return DefaultRules(), ConfigSourceDefault
	}
	defer file.Close()

	rules, err := ParseRules(file)
	if err != nil {
		cg.logger.Printf("[config] Error with reading config values in %s. Using default config: %s", cg.localConfigPath, err)
		return DefaultRules(), ConfigSourceDefault
	}

	for _, rule := range rules {
		if rule.Low > rule.High {
			cg.logger.Printf("[config] rule %q has low %d above high %d, it will never match", rule.Name, rule.Low, rule.High)
		}
	}
	if len(rules) == 0 {
		cg.logger.Printf("[config] %s holds no rules; every temperature will be out of range", cg.localConfigPath)
	}
	return rules, ConfigSourceLocalFile
}

// ParseRules reads one `low,high,speed` rule per line. Fields are taken as
// they are, so " 5" is not a number and not a known speed. Lines that don't
// have exactly three fields are ignored; a low or high that isn't an integer
// rejects the whole document. Rules are named after their line index.
func ParseRules(r io.Reader) ([]Rule, error) {
	//read it whole, a rule file has no business being long but a long line
	//must not be what sends us back to the defaults
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}

	var rules []Rule
	for i, line := range strings.Split(string(b), "\n") {
		fields := strings.Split(strings.TrimSuffix(line, "\r"), ",")
		if len(fields) != 3 {
			continue
		}
		low, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: low %q", ErrMalformedConfig, i+1, fields[0])
		}
		high, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: high %q", ErrMalformedConfig, i+1, fields[1])
		}
		rules = append(rules, Rule{
			Name:  fmt.Sprintf("level %d", i),
			Low:   low,
			High:  high,
			Speed: ctlthinkpadfan.ParseLevel(fields[2]),
		})
	}
	return rules, nil
}
