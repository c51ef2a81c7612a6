package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/dhbw-ka/leihschein/internal/config"
	"github.com/dhbw-ka/leihschein/internal/form"
	"github.com/dhbw-ka/leihschein/internal/pdffill"
	"github.com/dhbw-ka/leihschein/internal/registry"
	"github.com/dhbw-ka/leihschein/internal/reminder"
	"github.com/dhbw-ka/leihschein/internal/viewer"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging directs diagnostics to stderr so prompts stay clean on
// stdout.
func setupLogging(cfg *config.Config) {
	log.SetOutput(os.Stderr)
	if cfg.IsDebug() {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg)

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	if cfg.IsDebug() {
		log.Printf("Starting with configuration: %s", cfg.String())
	}

	store, err := openStorage(cfg)
	if err != nil {
		log.Fatalf("Failed to open loan registry: %v", err)
	}
	if store != nil {
		defer store.Close()
	}

	switch {
	case cfg.ListLoans:
		if err := listLoans(store); err != nil {
			log.Fatalf("Failed to list loans: %v", err)
		}
	case cfg.ReturnedID != "":
		if err := markReturned(store, cfg.ReturnedID); err != nil {
			log.Fatalf("Failed to mark loan as returned: %v", err)
		}
	default:
		if err := issueSlip(cfg, store); err != nil {
			if errors.Is(err, form.ErrAborted) {
				fmt.Println("Abgebrochen, es wurde nichts erstellt.")
				os.Exit(1)
			}
			log.Fatalf("Failed to issue slip: %v", err)
		}
	}
}

// issueSlip runs the linear pipeline: inspect template, collect values,
// fill the slip, record the loan, register the reminder, open the result.
// Registry, reminder and opener failures degrade with a warning; the run
// still exits 0 once the slip exists.
func issueSlip(cfg *config.Config, store registry.Storage) error {
	filler, err := pdffill.NewFiller(cfg.TemplatePath, cfg.MaxTemplateSize)
	if err != nil {
		return err
	}
	if err := filler.CheckSchema(); err != nil {
		return err
	}

	collector := form.NewCollector(filler.ItemCapacity())
	values, err := collector.Collect()
	if err != nil {
		return err
	}

	slipPath, err := filler.Fill(values, cfg.OutputDir)
	if err != nil {
		return err
	}
	color.Green("Leihschein PDF erfolgreich erstellt: %s", slipPath)

	if store != nil {
		if err := store.Add(registry.NewLoan(values, slipPath)); err != nil {
			color.Yellow("Leihschein konnte nicht im Register gespeichert werden: %v", err)
		}
	}

	if !cfg.NoReminder {
		registrar := reminder.NewRegistrar(viewer.Open)
		task := reminder.NewTask(values, filepath.Base(slipPath))
		icsPath, err := registrar.Register(task, slipPath)
		switch {
		case err != nil && icsPath != "":
			color.Yellow("Erinnerung konnte nicht an den Kalender übergeben werden: %v", err)
			color.Yellow("Kalendereintrag liegt unter: %s", icsPath)
		case err != nil:
			color.Yellow("Erinnerung konnte nicht angelegt werden: %v", err)
		default:
			color.Green("Erinnerung zur Rückgabe angelegt: %s", icsPath)
		}
	}

	if !cfg.NoOpen {
		if err := viewer.Open(slipPath); err != nil {
			color.Yellow("%v", err)
			color.Yellow("Bitte Datei manuell öffnen: %s", slipPath)
		}
	}

	return nil
}

func openStorage(cfg *config.Config) (registry.Storage, error) {
	switch cfg.Storage {
	case config.StorageNone:
		return nil, nil
	case config.StorageSQLite:
		return registry.NewSQLiteStorage(cfg.StoragePath)
	default:
		return registry.NewFileStorage(cfg.StoragePath), nil
	}
}

func listLoans(store registry.Storage) error {
	if store == nil {
		return errors.New("loan registry is disabled (storage=none)")
	}
	loans, err := store.List()
	if err != nil {
		return err
	}
	if len(loans) == 0 {
		fmt.Println("Keine Leihscheine erfasst.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tRÜCKGABE\tSTATUS\tARTIKEL")
	for _, l := range loans {
		status := "offen"
		if l.Returned {
			status = "zurückgegeben"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
			l.ID, l.Borrower, l.DueDate.Format(form.DateLayout), status, len(l.Items))
	}
	return w.Flush()
}

func markReturned(store registry.Storage, id string) error {
	if store == nil {
		return errors.New("loan registry is disabled (storage=none)")
	}
	if err := store.MarkReturned(id); err != nil {
		return err
	}
	color.Green("Leihschein %s als zurückgegeben markiert.", id)
	return nil
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("Leihschein\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
