// Command lapline is a terminal UI for comparing racing telemetry laps:
// synchronized trace charts, a track map, an elevation view, and a
// corner grade table driven by one shared cursor.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/lapline/lapline/internal/logging"
	"github.com/lapline/lapline/internal/state"
	"github.com/lapline/lapline/internal/telemetry"
	"github.com/lapline/lapline/internal/ui"
)

// CLI flags for headless mode
var (
	summaryMode bool
	exportPath  string
)

func main() {
	sessionPath := flag.String("session", "", "Path to a session JSON file")
	demoMode := flag.Bool("demo", false, "Run with a synthetic demo session")
	refLap := flag.Int("ref", 0, "Reference lap number (default: fastest)")
	cmpLap := flag.Int("cmp", 0, "Comparison lap number")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	logFile := flag.String("log-file", "", "Write logs to file (TUI mode)")
	flag.BoolVar(&summaryMode, "summary", false, "Print a session summary instead of the TUI")
	flag.StringVar(&exportPath, "export", "", "Export session JSON to file (use - for stdout)")
	flag.Parse()

	if *sessionPath == "" && !*demoMode {
		fmt.Fprintln(os.Stderr, "Usage: lapline -session <file.json> | -demo")
		flag.PrintDefaults()
		os.Exit(2)
	}

	headless := summaryMode || exportPath != ""
	if headless {
		logger := logging.New(logging.ParseLevel(*logLevel))
		runHeadless(*sessionPath, *demoMode, logger)
		return
	}

	logger := logging.Discard()
	if *logFile != "" {
		var err error
		logger, err = logging.NewFile(*logFile, logging.ParseLevel(*logLevel))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer logger.Close()
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "stdout is not a terminal; use -summary or -export for headless output")
		os.Exit(1)
	}

	store := state.NewStore()
	if *logFile != "" {
		// The store broadcast sees every mutation regardless of which
		// view made it, so it is the one place to trace interactions.
		store.Subscribe(func() {
			snap := store.Snapshot()
			logger.Debug("interaction: laps=%v cursor=%v@%.0fm zoom=%v corner=T%d",
				snap.SelectedLaps, snap.HasCursor, snap.CursorDistance,
				snap.Zoom, snap.SelectedCorner)
		})
	}
	model := ui.New(store)
	if *refLap != 0 && *cmpLap != 0 {
		model = model.WithLapSelection(*refLap, *cmpLap)
	}
	if *demoMode {
		logger.Info("Starting with synthetic demo session")
		model = model.WithSession(telemetry.DemoSession())
	} else {
		logger.Info("Loading session from %s", *sessionPath)
		model = model.WithSessionFile(*sessionPath)
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		p.Quit()
	}()

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

// runHeadless handles summary and export output without starting the TUI.
func runHeadless(sessionPath string, demoMode bool, logger *logging.Logger) {
	var session *telemetry.Session
	if demoMode {
		session = telemetry.DemoSession()
	} else {
		var err error
		session, err = telemetry.LoadSession(sessionPath)
		if err != nil {
			logger.Error("Load failed: %v", err)
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	logger.Debug("Session loaded: %d laps, %d corners", len(session.Laps), len(session.Corners))

	if exportPath != "" {
		export := telemetry.ExportSession(session)
		if exportPath == "-" {
			if err := export.WriteJSON(os.Stdout); err != nil {
				fmt.Fprintf(os.Stderr, "Error: write JSON to stdout: %v\n", err)
				os.Exit(1)
			}
		} else {
			f, err := os.Create(exportPath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: create export file: %v\n", err)
				os.Exit(1)
			}
			defer f.Close()
			if err := export.WriteJSON(f); err != nil {
				fmt.Fprintf(os.Stderr, "Error: write JSON to file: %v\n", err)
				os.Exit(1)
			}
		}
	}

	if summaryMode {
		telemetry.WriteSummaryTable(os.Stdout, session)
	}
}
