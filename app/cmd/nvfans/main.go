package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jroedel/nvfans/app/sdk/appfancontrol"
	"github.com/jroedel/nvfans/business/busadminnotifier"
	"github.com/jroedel/nvfans/business/busconfiggopher"
	"github.com/jroedel/nvfans/business/busdecisionlog"
	"github.com/jroedel/nvfans/business/busfancontrol"
	"github.com/jroedel/nvfans/foundation/clientsqlite"
	"github.com/jroedel/nvfans/foundation/ctlthinkpadfan"
	"github.com/jroedel/nvfans/foundation/hwmontherm"
	"github.com/jroedel/nvfans/foundation/logger"
	"github.com/jroedel/nvfans/foundation/notifyserver"
	"github.com/jroedel/nvfans/foundation/servermysql"
	"github.com/jroedel/nvfans/foundation/statusserver"
)

var (
	sensorGlob        string
	fanDevicePath     string
	localConfigPath   string
	intervalInSeconds int
	dbPath            string
	statusAddr        string
	clientIdentifier  string
	logLevelName      string

	//only from the environment, they carry credentials
	mysqlDsn  string
	notifyUrl string

	logLevel logger.Level
)

func init() {
	//string flags have no default value, because we need to know if the user submitted it or not
	flag.StringVar(&sensorGlob, "sensor-glob", "", "Glob matching the hwmon temperature inputs (env NVFANS_SENSOR_GLOB)")
	flag.StringVar(&fanDevicePath, "fan-device", "", "The thinkpad_acpi fan control file (env NVFANS_FAN_DEVICE)")
	flag.StringVar(&localConfigPath, "config", "", "The path to the temperature rule file (env NVFANS_CONFIG)")
	flag.IntVar(&intervalInSeconds, "interval", 0, "Seconds between decision cycles, 0 runs a single cycle and exits")
	flag.StringVar(&dbPath, "db", "", "sqlite file to keep a log of every decision in")
	flag.StringVar(&statusAddr, "status-addr", "", "Listen address for /health, /status and /metrics, e.g. 127.0.0.1:9101")
	flag.StringVar(&clientIdentifier, "client-identifier", "", "The string to identify ourselves to the admin webhook, defaults to the hostname")
	flag.StringVar(&logLevelName, "log-level", "", "debug, info, warn, error or off (env NVFANS_LOG_LEVEL)")
}

func main() {
	flag.Parse()
	if err := validateParams(); err != nil {
		log.Fatal(err)
	}
	lg := logger.New(os.Stderr, "", logLevel)
	if err := run(lg); err != nil {
		lg.Fatalf("%v", err)
	}
}

func run(lg *logger.Logger) error {
	reader, err := hwmontherm.New(sensorGlob, lg)
	if err != nil {
		return fmt.Errorf("create sensor reader: %w", err)
	}
	sensorPaths, err := reader.EnumerateSensorPaths()
	if err != nil || len(sensorPaths) == 0 {
		lg.Warnf("No temperature sensors match %s, the fan will be forced to %s", reader.Glob(), ctlthinkpadfan.FallbackCommand)
	} else {
		lg.Infof("Found %d temperature sensor(s)", len(sensorPaths))
	}

	fan, err := ctlthinkpadfan.New(fanDevicePath)
	if err != nil {
		return fmt.Errorf("create fan device: %w", err)
	}
	fmt.Printf("Full speed supported: %t\n", fan.FullSpeedSupported())

	cg, err := busconfiggopher.New(localConfigPath, lg)
	if err != nil {
		return fmt.Errorf("create config gopher: %w", err)
	}
	rules, source := cg.FetchRules()
	lg.Infof("Using %d rule(s) from %s", len(rules), source)
	for _, rule := range rules {
		lg.Debugf("  %s", rule)
	}

	ctl, err := busfancontrol.New(reader, fan, rules, lg)
	if err != nil {
		return fmt.Errorf("create fan controller: %w", err)
	}

	var notify *busadminnotifier.AdminNotifier
	if notifyUrl != "" {
		api, err := notifyserver.NewClient(notifyUrl)
		if err != nil {
			return fmt.Errorf("create notify client: %w", err)
		}
		notify, err = busadminnotifier.New(api, clientIdentifier, lg)
		if err != nil {
			return fmt.Errorf("create admin notifier: %w", err)
		}
	}

	var stores []busdecisionlog.Store
	if dbPath != "" {
		db, err := clientsqlite.New(dbPath)
		if err != nil {
			return fmt.Errorf("open decision log %s: %w", dbPath, err)
		}
		defer db.Close()
		stores = append(stores, db)
	}
	if mysqlDsn != "" {
		//the remote copy is a nice-to-have, the fan matters more
		remote, err := servermysql.New(mysqlDsn)
		if err != nil {
			lg.Errorf("Remote decision log unavailable, continuing without it: %v", err)
		} else {
			defer remote.Close()
			stores = append(stores, remote)
		}
	}
	var dlog *busdecisionlog.Handler
	if len(stores) > 0 {
		dlog, err = busdecisionlog.New(stores...)
		if err != nil {
			return fmt.Errorf("create decision log: %w", err)
		}
		lg.Debugf("Decision log execution id %s", dlog.ExecutionID())
	}

	var metrics *statusserver.Metrics
	if statusAddr != "" {
		metrics = statusserver.NewMetrics()
	}

	app, err := appfancontrol.New(ctl, lg, dlog, notify, metrics)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	if statusAddr != "" {
		status, err := statusserver.New(statusAddr, app.Status, metrics, lg)
		if err != nil {
			return fmt.Errorf("create status server: %w", err)
		}
		if err := status.Start(); err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = status.Shutdown(ctx)
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return app.Run(ctx, time.Duration(intervalInSeconds)*time.Second)
}

// validate user input, falling back to the environment and then defaults
func validateParams() error {
	sensorGlob = fromEnv(sensorGlob, "NVFANS_SENSOR_GLOB", hwmontherm.DefaultSensorGlob)
	fanDevicePath = fromEnv(fanDevicePath, "NVFANS_FAN_DEVICE", ctlthinkpadfan.DefaultDevicePath)
	localConfigPath = fromEnv(localConfigPath, "NVFANS_CONFIG", busconfiggopher.DefaultConfigPath)
	logLevelName = fromEnv(logLevelName, "NVFANS_LOG_LEVEL", "info")
	mysqlDsn = os.Getenv("NVFANS_MYSQL_DSN")
	notifyUrl = os.Getenv("NVFANS_NOTIFY_URL")

	if intervalInSeconds < 0 {
		return fmt.Errorf("the interval can't be negative, got %d", intervalInSeconds)
	}

	var err error
	logLevel, err = logger.ParseLevel(logLevelName)
	if err != nil {
		return err
	}

	//we need a clientIdentifier if a webhook has been specified by user
	if notifyUrl != "" {
		if clientIdentifier == "" {
			clientIdentifier, _ = os.Hostname()
		}
		if !notifyserver.ClientIdRegex.MatchString(clientIdentifier) {
			return fmt.Errorf("the client identifier %q must match the regular expression %s, set one with `nvfans -client-identifier our-name`", clientIdentifier, notifyserver.ClientIdRegex.String())
		}
	}
	return nil
}

func fromEnv(value, envName, fallback string) string {
	if value != "" {
		return value
	}
	if v := os.Getenv(envName); v != "" {
		return v
	}
	return fallback
}
