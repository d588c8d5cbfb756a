package notas

import (
	"fmt"
	"log/slog"
	"os"
)

const (
	defaultCanvasWidth   = 300
	defaultCanvasHeight  = 120
	defaultCanvasPadding = 20
	defaultCurveSteps    = 100
)

/*
When deciding whether a value belongs in Config or Controller, consider the following:
- Does this value change while the page is shown? → Controller if yes, Config if no
- Is it derived from the parsed table? → Controller
- Should users be able to set it from the command line? → Config
*/

type Config struct {
	UserName  string       `json:"user_name"`  // Display name to look up in the table
	Unsorted  bool         `json:"unsorted"`   // Start with the table in original order
	UserAgent string       `json:"user_agent"` // Used by the mobile layout shim
	ExportDir string       `json:"export_dir"` // Where exported JSON files are written
	StorePath string       `json:"store_path"` // YAML file holding the cached display name
	Curve     CurveOptions `json:"curve"`
	Logger    *slog.Logger `json:"-"`
	LogLevel  slog.Level   `json:"-"` // Defaults to 0 (slog.LevelInfo)
}

func (c *Config) Validate() error {
	if c.Curve.Width < 0 || c.Curve.Height < 0 {
		return fmt.Errorf("canvas size cannot be negative")
	}
	if c.Curve.Width > 0 && c.Curve.Padding*2 >= c.Curve.Width {
		return fmt.Errorf("canvas padding must be less than half the width")
	}
	if c.Curve.Height > 0 && c.Curve.Padding*2 >= c.Curve.Height {
		return fmt.Errorf("canvas padding must be less than half the height")
	}
	if c.Curve.Steps < 0 {
		return fmt.Errorf("curve steps cannot be negative")
	}
	return nil
}

// Store opens the name store at StorePath, or at the default location
// when it is empty.
func (c *Config) Store() (*Store, error) {
	if c.StorePath == "" {
		p, err := DefaultStorePath()
		if err != nil {
			return nil, err
		}
		c.StorePath = p
	}
	return NewStore(c.StorePath), nil
}

// applyDefaults fills zero values and initializes the default logger.
func (c *Config) applyDefaults() {
	if c.Logger == nil {
		c.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level:     c.LogLevel,
			AddSource: false,
		})).With("component", "notas")
	}
	c.Curve = c.Curve.withDefaults()
	if c.ExportDir == "" {
		c.ExportDir = "."
	}
}
