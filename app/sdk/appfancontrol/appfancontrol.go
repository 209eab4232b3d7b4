package appfancontrol

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jroedel/nvfans/business/busadminnotifier"
	"github.com/jroedel/nvfans/business/busdecisionlog"
	"github.com/jroedel/nvfans/business/busfancontrol"
	"github.com/jroedel/nvfans/foundation/ctlthinkpadfan"
	"github.com/jroedel/nvfans/foundation/notifyserver"
	"github.com/jroedel/nvfans/foundation/statusserver"
)

type Logger interface {
	Printf(format string, v ...any)
}

// Snapshot is the last decision as served on /status.
type Snapshot struct {
	Timestamp    time.Time `json:"timestamp"`
	Status       string    `json:"status"`
	TemperatureC *int64    `json:"temperatureC"`
	Rule         string    `json:"rule,omitempty"`
	Command      string    `json:"command,omitempty"`
	Wrote        bool      `json:"wrote"`
	Error        string    `json:"error,omitempty"`
	Cycles       int       `json:"cycles"`
}

type App struct {
	//required
	ctl    *busfancontrol.Controller
	logger Logger

	//optional
	dlog    *busdecisionlog.Handler
	notify  *busadminnotifier.AdminNotifier
	metrics *statusserver.Metrics

	//internal
	mu              sync.Mutex
	last            *Snapshot
	cycles          int
	invalidNotified bool
	now             func() time.Time
}

func New(ctl *busfancontrol.Controller, logger Logger, dlog *busdecisionlog.Handler, notify *busadminnotifier.AdminNotifier, metrics *statusserver.Metrics) (*App, error) {
	if ctl == nil {
		return nil, fmt.Errorf("app construct: Controller is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("app construct: Logger is required")
	}
	return &App{ctl: ctl, logger: logger, dlog: dlog, notify: notify, metrics: metrics, now: time.Now}, nil
}

// Run does one decision cycle right away and then one per interval until ctx
// is done. An interval of zero or less means a single cycle. A fatal device
// error stops the loop and is returned; any other error is logged and the
// next tick retries.
func (app *App) Run(ctx context.Context, interval time.Duration) error {
	app.notify.NotifyAdmin("nvfans is starting up", notifyserver.InfoNotification)

	if err := app.cycleOrStop(); err != nil {
		return err
	}
	if interval <= 0 {
		return nil
	}

	app.logger.Printf("[nvfans] Polling every %s", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := app.cycleOrStop(); err != nil {
				return err
			}
		case <-ctx.Done():
			app.logger.Printf("[nvfans] Context canceled, %d decision cycle(s) run", app.Cycles())
			return nil
		}
	}
}

func (app *App) cycleOrStop() error {
	_, err := app.RunCycle()
	if err == nil {
		return nil
	}
	if ctlthinkpadfan.IsFatal(err) {
		return fmt.Errorf("fan control stopped: %w", err)
	}
	app.logger.Printf("[nvfans] %v", err)
	return nil
}

// RunCycle runs a single decision and records it: snapshot, metrics,
// decision log and, when something is wrong, the admin.
func (app *App) RunCycle() (busfancontrol.Result, error) {
	res, err := app.ctl.SetFanLevel()
	now := app.now()

	snap := &Snapshot{
		Timestamp: now,
		Status:    res.Status.String(),
		Command:   res.Command,
		Wrote:     res.Wrote,
	}
	if res.TemperatureValid {
		t := res.TemperatureC
		snap.TemperatureC = &t
	}
	if res.HasRule {
		snap.Rule = res.Rule.Name
	}
	if err != nil {
		snap.Error = err.Error()
	}

	app.mu.Lock()
	app.cycles++
	snap.Cycles = app.cycles
	app.last = snap
	app.mu.Unlock()

	app.metrics.Observe(snap.Status, res.TemperatureC, res.TemperatureValid, res.Command, res.Wrote)

	if app.dlog != nil {
		derr := app.dlog.HandleDecision(busdecisionlog.Decision{
			Timestamp:        now,
			TemperatureC:     res.TemperatureC,
			TemperatureValid: res.TemperatureValid,
			RuleName:         snap.Rule,
			Command:          res.Command,
			Status:           snap.Status,
			Wrote:            res.Wrote,
		})
		if derr != nil {
			app.logger.Printf("[nvfans] Error persisting decision: %v", derr)
		}
	}

	//only tell the admin when we first go blind, not every cycle we stay that way
	if !res.TemperatureValid && !app.invalidNotified {
		app.invalidNotified = true
		app.notify.NotifyAdmin("no temperature sensor could be read, fan forced to "+ctlthinkpadfan.FallbackCommand, notifyserver.ProblemNotification)
	} else if res.TemperatureValid {
		app.invalidNotified = false
	}

	var fatal *ctlthinkpadfan.FatalError
	if errors.As(err, &fatal) {
		app.notify.NotifyAdmin(fatal.Error(), notifyserver.SeriousNotification)
	}
	return res, err
}

// LastDecision returns a copy of the latest snapshot, or nil before the first
// cycle. Safe to call from other goroutines.
func (app *App) LastDecision() *Snapshot {
	app.mu.Lock()
	defer app.mu.Unlock()
	if app.last == nil {
		return nil
	}
	s := *app.last
	return &s
}

func (app *App) Cycles() int {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.cycles
}

// Status adapts LastDecision for statusserver, keeping "no decision yet" an
// untyped nil.
func (app *App) Status() any {
	if s := app.LastDecision(); s != nil {
		return s
	}
	return nil
}
