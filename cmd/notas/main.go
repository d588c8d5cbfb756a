package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/noperator/notas/pkg/notas"
)

// openInput treats "-" as stdin.
func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func loadPage(path string, logger *slog.Logger) (*notas.Page, error) {
	r, err := openInput(path)
	if err != nil {
		return nil, fmt.Errorf("could not open page %s: %w", path, err)
	}
	defer r.Close()
	return notas.LoadPage(r, logger)
}

func main() {
	gradesFile := flag.String("f", "", "Grades page HTML file (- for stdin)")
	landingFile := flag.String("landing", "", "Landing page HTML file to read the display name from")
	outputFile := flag.String("o", "", "Output file for the augmented page (default stdout)")
	export := flag.Bool("export", false, "Write the JSON export named after the subject")
	exportDir := flag.String("export-dir", ".", "Directory for the JSON export")
	userName := flag.String("user", "", "Display name to look up (default: cached name)")
	storePath := flag.String("store", "", "Path of the cached name store (default: user config dir)")
	unsorted := flag.Bool("unsorted", false, "Show the table in original order initially")
	userAgent := flag.String("user-agent", "", "User agent used for the mobile layout adjustments")
	tui := flag.Bool("tui", false, "Open the interactive terminal view instead of writing HTML")
	schema := flag.Bool("schema", false, "Print the JSON schema of the export document and exit")
	width := flag.Float64("width", 300, "Bell curve canvas width")
	height := flag.Float64("height", 120, "Bell curve canvas height")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})).With("component", "notas-cli")

	if *schema {
		out, err := json.MarshalIndent(notas.ExportSchema(), "", "  ")
		if err != nil {
			logger.Error("could not marshal schema", "error", err)
			os.Exit(1)
		}
		fmt.Println(string(out))
		return
	}

	if *gradesFile == "" && *landingFile == "" {
		logger.Error("Usage: notas [-landing <landing.html>] [-f <grades.html>] [-o <out.html>] [-export] [-export-dir <dir>] [-user <name>] [-store <file>] [-unsorted] [-tui] [-schema]")
		os.Exit(1)
	}
	if *gradesFile == "-" && *landingFile == "-" {
		logger.Error("only one page can be read from stdin")
		os.Exit(1)
	}

	config := &notas.Config{
		UserName:  *userName,
		Unsorted:  *unsorted,
		UserAgent: *userAgent,
		ExportDir: *exportDir,
		StorePath: *storePath,
		Curve:     notas.CurveOptions{Width: *width, Height: *height},
		Logger:    logger,
		LogLevel:  logLevel,
	}
	store, err := config.Store()
	if err != nil {
		logger.Error("could not locate name store", "error", err)
		os.Exit(1)
	}

	if *landingFile != "" {
		landing, err := loadPage(*landingFile, logger)
		if err != nil {
			logger.Error("could not load landing page", "error", err)
			os.Exit(1)
		}
		if _, err := notas.RememberDisplayName(landing, store); err != nil {
			logger.Error("could not cache display name", "error", err)
			os.Exit(1)
		}
	}

	if *gradesFile == "" {
		return
	}

	if config.UserName == "" {
		cached, err := notas.DisplayName(store)
		if err != nil {
			logger.Warn("could not read cached display name", "error", err)
		}
		config.UserName = cached
	}

	page, err := loadPage(*gradesFile, logger)
	if err != nil {
		logger.Error("could not load grades page", "error", err)
		os.Exit(1)
	}
	records, err := page.Records()
	if err != nil {
		logger.Error("could not parse grades table", "error", err)
		os.Exit(1)
	}

	if *tui {
		screen, err := tcell.NewScreen()
		if err != nil {
			logger.Error("failed to create screen", "error", err)
			os.Exit(1)
		}
		viewer := notas.NewViewer(screen, records)
		ctrl, err := notas.NewController(config, records, viewer, page.Subject())
		if err != nil {
			logger.Error("failed to create controller", "error", err)
			os.Exit(1)
		}
		ctrl.SetSorted(!config.Unsorted)
		viewer.Attach(ctrl)
		if err := viewer.Run(); err != nil {
			logger.Error("terminal view failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if page.ApplyMobileLayout(config.UserAgent) {
		logger.Debug("applied mobile layout")
	}

	ctrl, err := notas.NewController(config, records, page, page.Subject())
	if err != nil {
		logger.Error("failed to create controller", "error", err)
		os.Exit(1)
	}
	ctrl.SetSorted(!config.Unsorted)

	panel, err := ctrl.Panel()
	if err != nil {
		logger.Error("failed to render summary", "error", err)
		os.Exit(1)
	}
	if err := page.InsertBeforeTable(panel); err != nil {
		logger.Error("failed to insert summary", "error", err)
		os.Exit(1)
	}

	if *export {
		// Export failures are logged by the controller; the page is still written.
		if path, err := ctrl.ExportToFile(); err == nil {
			logger.Debug("exported grades", "file", path)
		}
	}

	if *outputFile == "" {
		if err := page.Render(os.Stdout); err != nil {
			logger.Error("could not write page", "error", err)
			os.Exit(1)
		}
		return
	}
	f, err := os.Create(*outputFile)
	if err != nil {
		logger.Error("could not create output file", "error", err)
		os.Exit(1)
	}
	if err := page.Render(f); err != nil {
		f.Close()
		logger.Error("could not write page", "error", err)
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		logger.Error("could not close output file", "error", err)
		os.Exit(1)
	}
	logger.Info("page written to file", "file", *outputFile)
}
