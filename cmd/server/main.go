package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/term"

	"github.com/MEDSABRY98/bhs-reports/internal/config"
	"github.com/MEDSABRY98/bhs-reports/internal/handlers/inventory"
	"github.com/MEDSABRY98/bhs-reports/internal/handlers/payments"
	"github.com/MEDSABRY98/bhs-reports/internal/handlers/receipts"
	"github.com/MEDSABRY98/bhs-reports/internal/handlers/sales"
	httpx "github.com/MEDSABRY98/bhs-reports/internal/http"
	"github.com/MEDSABRY98/bhs-reports/internal/services/rowsource"
	"github.com/MEDSABRY98/bhs-reports/internal/services/storage"
	"github.com/MEDSABRY98/bhs-reports/internal/version"
)

var cfg *config.Config

func main() {
	cfg = config.Load()
	log.Printf("Starting BHS Reports (%s) on %s", version.Get().Version, cfg.ListenAddr)
	log.Printf("Data directory: %s", cfg.DataDirectory)
	log.Printf("Row source: %s", cfg.SourceKind)

	if err := SetupDependencies(cfg); err != nil {
		log.Fatalf("Setup failed: %v", err)
	}

	r := SetupRouter()

	log.Printf("Server starting on %s", cfg.ListenAddr)
	log.Fatal(http.ListenAndServe(cfg.ListenAddr, r))
}

// SetupDependencies wires the row source and handler packages. Split
// out of main so the server tests can run against the same wiring.
func SetupDependencies(c *config.Config) error {
	cfg = c

	source, err := buildSource(c)
	if err != nil {
		return err
	}

	inventory.Initialize(source)
	sales.Initialize(source)
	payments.Initialize(source, c)
	receipts.Initialize(source)

	return nil
}

// buildSource constructs the configured row source
func buildSource(c *config.Config) (rowsource.Source, error) {
	switch c.SourceKind {
	case config.SourceSheets:
		if c.SpreadsheetID == "" {
			return nil, fmt.Errorf("BHS_SPREADSHEET_ID is required for the sheets source")
		}
		sheets, err := rowsource.NewSheets(context.Background(), c.SpreadsheetID)
		if err != nil {
			return nil, fmt.Errorf("connecting to spreadsheet: %w", err)
		}
		return rowsource.NewCached(sheets, c.CacheTTL), nil
	default:
		store, err := storage.New(c.DataDirectory)
		if err != nil {
			return nil, fmt.Errorf("opening data directory: %w", err)
		}
		if store.IsEncrypted() {
			if err := unlockStore(store); err != nil {
				return nil, err
			}
		}
		return rowsource.NewCached(rowsource.NewCSV(c.DataDirectory, store), c.CacheTTL), nil
	}
}

// unlockStore prompts for the passphrase of an encrypted data directory.
// BHS_PASSPHRASE skips the prompt for non-interactive deployments.
func unlockStore(store *storage.Store) error {
	if passphrase := os.Getenv("BHS_PASSPHRASE"); passphrase != "" {
		return store.Unlock(passphrase)
	}

	fmt.Fprint(os.Stderr, "Data directory is encrypted. Passphrase: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("reading passphrase: %w", err)
	}

	return store.Unlock(string(raw))
}

// SetupRouter builds the chi router with all routes registered
func SetupRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// Static files
	fileServer := http.FileServer(http.Dir(cfg.StaticDirectory))
	r.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/static/index.html", http.StatusTemporaryRedirect)
	})

	// Dashboard routes
	inventory.RegisterRoutes(r)
	sales.RegisterRoutes(r)
	payments.RegisterRoutes(r)
	receipts.RegisterRoutes(r)

	// API routes
	r.Get("/api/health", handleHealth)
	r.Get("/api/version", handleVersion)

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, version.Get())
}
