// liftlog-sync is the device-side companion binary. It replays the local
// outbox to the hosted server, imports workout history from a JSON export,
// and can serve MCP over stdio backed by the server's REST API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/claude/liftlog/internal/importer"
	"github.com/claude/liftlog/internal/localstore"
	"github.com/claude/liftlog/internal/mcp"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/sync"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "LiftLog server URL (e.g. https://liftlog.tail1234.ts.net)")
	apiKey := flag.String("api-key", os.Getenv("LIFTLOG_API_KEY"), "API key for sync endpoints (default $LIFTLOG_API_KEY)")
	stateDir := flag.String("state-dir", "", "local data directory (default ~/.liftlog)")
	importPath := flag.String("import", "", "import workout history from a JSON export file")
	catalogPath := flag.String("catalog", "", "exercise catalog YAML (used by -mcp for muscle-group volume)")
	mcpMode := flag.Bool("mcp", false, "serve MCP over stdio against the server's REST API")
	dryRun := flag.Bool("dry-run", false, "with -import: parse and detect records but don't write")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("liftlog-sync", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx := context.Background()

	if *mcpMode {
		if *serverURL == "" {
			fmt.Fprintf(os.Stderr, "Error: -mcp requires -server\n")
			os.Exit(1)
		}
		runMCP(*serverURL, *catalogPath, log)
		return
	}

	if *importPath == "" && *serverURL == "" {
		fmt.Fprintf(os.Stderr, "Usage: liftlog-sync -server <URL> [-import <file.json>] [-mcp] [-dry-run]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	store, err := openStore(*stateDir)
	if err != nil {
		log.Error("failed to open local store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if *importPath != "" {
		stats, err := importer.New(store, log, *dryRun).Import(ctx, *importPath)
		printImportStats(stats, *dryRun)
		if err != nil {
			log.Error("import failed", "error", err)
			os.Exit(1)
		}
	}

	if *serverURL == "" || *dryRun {
		return
	}

	client := sync.NewClient(*serverURL, *apiKey)
	sent, remaining, err := sync.NewDispatcher(store, client, log).Reconcile(ctx)
	if err != nil {
		log.Error("reconcile failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("sync complete: %d sent, %d still queued\n", sent, remaining)
	if remaining > 0 {
		os.Exit(1)
	}
}

func openStore(stateDir string) (*localstore.Store, error) {
	if stateDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		stateDir = filepath.Join(homeDir, ".liftlog")
	}
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}
	return localstore.Open(stateDir)
}

func runMCP(serverURL, catalogPath string, log *slog.Logger) {
	catalog := models.ExerciseCatalog{}
	if catalogPath != "" {
		var err error
		catalog, err = models.LoadCatalog(catalogPath)
		if err != nil {
			log.Error("failed to load exercise catalog", "path", catalogPath, "error", err)
			os.Exit(1)
		}
	}

	ds := mcp.NewHTTPClient(serverURL)
	srv := mcp.New(ds, catalog, Version, log)
	if err := mcpserver.ServeStdio(srv); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}

func printImportStats(stats *importer.Stats, dryRun bool) {
	fmt.Println()
	if dryRun {
		fmt.Println("=== Import Summary (dry run) ===")
	} else {
		fmt.Println("=== Import Summary ===")
	}
	fmt.Printf("  Sessions imported: %d\n", stats.SessionsImported)
	fmt.Printf("  Sessions skipped:  %d (already present)\n", stats.SessionsSkipped)
	fmt.Printf("  Sessions invalid:  %d\n", stats.SessionsInvalid)
	fmt.Printf("  Records detected:  %d\n", stats.RecordsDetected)
	fmt.Println()
}
