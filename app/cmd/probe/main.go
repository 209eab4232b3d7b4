// Command probe shows what nvfans would see on this machine without touching
// the fan.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jroedel/nvfans/business/busconfiggopher"
	"github.com/jroedel/nvfans/business/busdecisionlog"
	"github.com/jroedel/nvfans/foundation/clientsqlite"
	"github.com/jroedel/nvfans/foundation/ctlthinkpadfan"
	"github.com/jroedel/nvfans/foundation/hwmontherm"
	"github.com/jroedel/nvfans/foundation/logger"
)

func main() {
	sensorGlob := flag.String("sensor-glob", hwmontherm.DefaultSensorGlob, "Glob matching the hwmon temperature inputs")
	fanDevicePath := flag.String("fan-device", ctlthinkpadfan.DefaultDevicePath, "The thinkpad_acpi fan control file")
	localConfigPath := flag.String("config", busconfiggopher.DefaultConfigPath, "The path to the temperature rule file")
	dbPath := flag.String("db", "", "sqlite decision log to show the latest entries from")
	recent := flag.Int("recent", 10, "How many decisions to show with -db")
	flag.Parse()

	lg := logger.New(os.Stderr, "", logger.WarnLevel)

	reader, err := hwmontherm.New(*sensorGlob, lg)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Checking %#v for temperature sensors\n", reader.Glob())
	readings := reader.ReadAll()
	if len(readings) == 0 {
		fmt.Println("We didn't find any :-(")
	}
	for _, r := range readings {
		if r.Valid {
			fmt.Printf("  %s: %d m°C\n", r.Path, r.MilliCelsius)
		} else {
			fmt.Printf("  %s: unreadable\n", r.Path)
		}
	}
	if celsius, ok := hwmontherm.MaxCelsius(readings); ok {
		fmt.Printf("Max temperature: %d°C\n", celsius)
	} else {
		fmt.Println("Max temperature: invalid")
	}

	fan, err := ctlthinkpadfan.New(*fanDevicePath)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Full speed supported: %t\n", fan.FullSpeedSupported())

	cg, err := busconfiggopher.New(*localConfigPath, lg)
	if err != nil {
		log.Fatal(err)
	}
	rules, source := cg.FetchRules()
	fmt.Printf("Rules from %s:\n", source)
	for _, rule := range rules {
		fmt.Printf("  %s\n", rule)
	}

	if *dbPath == "" {
		return
	}
	db, err := clientsqlite.New(*dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	dlog, err := busdecisionlog.New(db)
	if err != nil {
		log.Fatal(err)
	}
	decisions, err := dlog.Recent(*recent)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Latest %d decision(s):\n", len(decisions))
	for _, d := range decisions {
		temperature := "invalid"
		if d.TemperatureValid {
			temperature = fmt.Sprintf("%d°C", d.TemperatureC)
		}
		fmt.Printf("  %s %-8s %-7s %-12s wrote=%t %s\n", d.Timestamp.Format(time.DateTime), d.Hostname, temperature, d.Status, d.Wrote, d.Command)
	}
}
