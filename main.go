package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/4propertygraphs/PDL4/config"
	"github.com/4propertygraphs/PDL4/feeds"
	"github.com/4propertygraphs/PDL4/httputil"
	"github.com/4propertygraphs/PDL4/logging"
	"github.com/4propertygraphs/PDL4/scheduler"
	"github.com/4propertygraphs/PDL4/services"
	"github.com/4propertygraphs/PDL4/storage"
)

var (
	importNow  = flag.Bool("import", false, "Run one import pass and exit")
	sourceFlag = flag.String("source", "", "Comma-separated source scope (myhome,acquaint,daft,wordpress)")
	agencyFlag = flag.String("agency", "", "Limit the import to one agency name")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	logFile, err := logging.Setup("daemon.log")
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	log.Println("Starting property feed importer...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	endpoints, err := cfg.WordPressEndpoints()
	if err != nil {
		log.Fatalf("Failed to load WordPress endpoints: %v", err)
	}
	log.Printf("Loaded %d WordPress endpoints", len(endpoints))

	ctx := context.Background()

	var store storage.Store
	if cfg.DatabaseURL != "" {
		pgStore, err := storage.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to Postgres: %v", err)
		}
		store = pgStore
		log.Printf("Connected to Postgres: %s", maskConnectionString(cfg.DatabaseURL))
	} else {
		sqliteStore, err := storage.NewSQLiteStore(cfg.DBPath)
		if err != nil {
			log.Fatalf("Failed to open SQLite: %v", err)
		}
		store = sqliteStore
		log.Printf("SQLite database: %s", cfg.DBPath)
	}
	defer store.Close()

	clients := httputil.NewClients(cfg.FetchTimeout, cfg.LiveFetchTimeout)
	adapters := []feeds.Adapter{
		feeds.NewMyHomeAdapter(clients.Feed, cfg.Feeds.MyHomeBaseURL, cfg.Feeds.MyHomePageSize),
		feeds.NewAcquaintAdapter(clients.Feed, cfg.Feeds.AcquaintBaseURL),
		feeds.NewDaftAdapter(clients.Feed, cfg.Feeds.DaftBaseURL),
		feeds.NewWordPressAdapter(clients.Live, endpoints),
	}

	importer := services.NewImporter(store, adapters)

	if *importNow {
		scope := services.ImportScope{
			Sources: services.ParseSourceFilter(*sourceFlag),
			Agency:  *agencyFlag,
		}
		log.Println("Running import...")
		if err := importer.Run(ctx, scope); err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		log.Println("Import complete!")
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sched := scheduler.New(cfg, importer, store)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	if remaining, err := sched.Countdown(ctx); err == nil {
		log.Printf("Next scheduled import in %s", remaining)
	}

	log.Println("Daemon running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	sched.Stop()
	log.Println("Goodbye!")
}

// maskConnectionString masks the password in a connection string for logging
func maskConnectionString(connStr string) string {
	start := 0
	for i := 0; i < len(connStr)-3; i++ {
		if connStr[i:i+3] == "://" {
			start = i + 3
			break
		}
	}
	if start == 0 {
		return connStr
	}

	colonIdx := -1
	atIdx := -1
	for i := start; i < len(connStr); i++ {
		if connStr[i] == ':' && colonIdx == -1 {
			colonIdx = i
		}
		if connStr[i] == '@' {
			atIdx = i
			break
		}
	}

	if colonIdx > 0 && atIdx > colonIdx {
		return connStr[:colonIdx+1] + "****" + connStr[atIdx:]
	}
	return connStr
}
