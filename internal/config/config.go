package config

import (
	"log"
	"os"
	"path/filepath"
	"time"
)

// Row source kinds
const (
	SourceCSV    = "csv"
	SourceSheets = "sheets"
)

// Config holds application configuration
type Config struct {
	// Server settings
	ListenAddr string `json:"listen_addr"`
	Debug      bool   `json:"debug"`

	// Directories
	DataDirectory   string `json:"data_directory"`
	StaticDirectory string `json:"static_directory"`

	// Row source
	SourceKind    string        `json:"source_kind"`
	SpreadsheetID string        `json:"spreadsheet_id"`
	CacheTTL      time.Duration `json:"cache_ttl"`

	// PDF statements
	FontFile string `json:"font_file"`
}

// DefaultConfig returns configuration with sensible defaults
func DefaultConfig() *Config {
	// Get working directory
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}

	return &Config{
		ListenAddr:      ":8080",
		Debug:           false,
		DataDirectory:   filepath.Join(wd, "data"),
		StaticDirectory: filepath.Join(wd, "web", "static"),
		SourceKind:      SourceCSV,
		CacheTTL:        5 * time.Minute,
	}
}

// Load loads configuration from environment variables
func Load() *Config {
	cfg := DefaultConfig()

	if addr := os.Getenv("BHS_LISTEN_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}
	if debug := os.Getenv("BHS_DEBUG"); debug == "true" || debug == "1" {
		cfg.Debug = true
	}
	if dataDir := os.Getenv("BHS_DATA_DIR"); dataDir != "" {
		cfg.DataDirectory = dataDir
	}
	if staticDir := os.Getenv("BHS_STATIC_DIR"); staticDir != "" {
		cfg.StaticDirectory = staticDir
	}
	if kind := os.Getenv("BHS_SOURCE"); kind != "" {
		if kind != SourceCSV && kind != SourceSheets {
			log.Printf("Warning: unknown BHS_SOURCE %q, falling back to %s", kind, SourceCSV)
			kind = SourceCSV
		}
		cfg.SourceKind = kind
	}
	if id := os.Getenv("BHS_SPREADSHEET_ID"); id != "" {
		cfg.SpreadsheetID = id
	}
	if ttl := os.Getenv("BHS_CACHE_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			log.Printf("Warning: invalid BHS_CACHE_TTL %q: %v", ttl, err)
		} else {
			cfg.CacheTTL = d
		}
	}
	if font := os.Getenv("BHS_FONT_FILE"); font != "" {
		cfg.FontFile = font
	}

	// Ensure directories exist
	cfg.ensureDirectories()

	return cfg
}

// ensureDirectories creates required directories if they don't exist
func (c *Config) ensureDirectories() {
	if err := os.MkdirAll(c.DataDirectory, 0755); err != nil {
		log.Printf("Warning: could not create directory %s: %v", c.DataDirectory, err)
	}
}
