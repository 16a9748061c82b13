package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/deckforge/ptcg-analyzer/internal/analysis"
	"github.com/deckforge/ptcg-analyzer/internal/catalog"
	"github.com/deckforge/ptcg-analyzer/internal/config"
	"github.com/deckforge/ptcg-analyzer/internal/deckimport"
	"github.com/deckforge/ptcg-analyzer/internal/llm"
	"github.com/deckforge/ptcg-analyzer/internal/meta"
	"github.com/deckforge/ptcg-analyzer/internal/pricing"
	"github.com/deckforge/ptcg-analyzer/internal/report"
	"github.com/deckforge/ptcg-analyzer/internal/version"
)

func usage() {
	fmt.Fprintf(os.Stderr, `deck-analyzer %s - Pokemon TCG deck analysis

Usage:
  deck-analyzer analyze -deck <file> [options]   Analyze a deck list
  deck-analyzer import-cards -file <file>        Import bulk card data into the catalog
  deck-analyzer backup -out <file>               Back up the card catalog
  deck-analyzer restore -in <file>               Restore the card catalog
  deck-analyzer meta                             Show the current meta snapshot
  deck-analyzer version                          Print the version

Run 'deck-analyzer <command> -h' for command options.
`, version.GetVersion())
}

func main() {
	log.SetFlags(0)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "analyze":
		err = runAnalyze(os.Args[2:])
	case "import-cards":
		err = runImportCards(os.Args[2:])
	case "backup":
		err = runBackup(os.Args[2:])
	case "restore":
		err = runRestore(os.Args[2:])
	case "meta":
		err = runMeta(os.Args[2:])
	case "version":
		fmt.Println(version.GetVersion())
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// newLogger builds the application logger. Debug mode turns on source
// locations and debug-level records.
func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	}))
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func openCatalog(cfg *config.Config) (*catalog.DB, error) {
	path, err := cfg.CatalogPath()
	if err != nil {
		return nil, err
	}
	dbCfg := catalog.DefaultConfig(path)
	dbCfg.AutoMigrate = cfg.Catalog.AutoMigrate
	return catalog.Open(dbCfg)
}

// newMetaProvider wires the snapshot source configured in cfg: a local file
// (optionally watched), or the built-in snapshot.
func newMetaProvider(cfg *config.Config, logger *slog.Logger) (*meta.Provider, error) {
	provider := meta.NewProvider(logger)
	if cfg.Meta.SnapshotPath == "" {
		return provider, nil
	}
	if err := provider.LoadFile(cfg.Meta.SnapshotPath); err != nil {
		return nil, fmt.Errorf("loading meta snapshot: %w", err)
	}
	if cfg.Meta.Watch {
		if err := provider.Watch(cfg.Meta.SnapshotPath); err != nil {
			return nil, fmt.Errorf("watching meta snapshot: %w", err)
		}
	}
	return provider, nil
}

func runAnalyze(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	deckPath := fs.String("deck", "", "Path to the deck list file (required)")
	deckName := fs.String("name", "", "Deck name (defaults to the file name)")
	configPath := fs.String("config", "", "Path to config file (defaults to ~/.ptcg-analyzer/config.toml)")
	catalogPath := fs.String("catalog", "", "Path to the card catalog database (overrides config)")
	metaSnapshot := fs.String("meta-snapshot", "", "Path to a meta snapshot TOML file (overrides config)")
	jsonOut := fs.Bool("json", false, "Print the full result as JSON")
	reportDir := fs.String("report", "", "Write HTML charts into this directory")
	openReport := fs.Bool("open", false, "Open the first chart in a browser (with -report)")
	review := fs.Bool("review", false, "Generate a written review (uses Ollama when available)")
	price := fs.Bool("price", false, "Estimate the deck's market price")
	debug := fs.Bool("debug", false, "Enable debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *deckPath == "" {
		fs.Usage()
		return fmt.Errorf("-deck is required")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *catalogPath != "" {
		cfg.Catalog.Path = *catalogPath
	}
	if *metaSnapshot != "" {
		cfg.Meta.SnapshotPath = *metaSnapshot
	}
	logger := newLogger(*debug || cfg.App.DebugMode)

	db, err := openCatalog(cfg)
	if err != nil {
		return fmt.Errorf("opening card catalog: %w", err)
	}
	defer db.Close()

	f, err := os.Open(*deckPath)
	if err != nil {
		return fmt.Errorf("opening deck list: %w", err)
	}
	defer f.Close()

	name := *deckName
	if name == "" {
		name = deckDisplayName(*deckPath)
	}

	ctx := context.Background()
	imported, err := deckimport.Import(ctx, db, name, f)
	if err != nil {
		return fmt.Errorf("importing deck: %w", err)
	}
	for _, line := range imported.Unresolved {
		logger.Warn("card not in catalog, skipped", "card", line.Name, "quantity", line.Quantity)
	}

	provider, err := newMetaProvider(cfg, logger)
	if err != nil {
		return err
	}
	defer provider.Close()

	analyzer := analysis.New(analysis.Options{
		Meta:   provider,
		Logger: logger,
	})
	result := analyzer.Analyze(imported.Deck)

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printResult(os.Stdout, result)

	if *review || cfg.LLM.Enabled {
		printReview(ctx, cfg, result)
	}

	if *price || cfg.Pricing.Enabled {
		printDeckPrice(ctx, cfg, imported, logger)
	}

	if *reportDir != "" {
		paths, err := report.WriteCharts(result, *reportDir)
		if err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		fmt.Printf("\nWrote %d charts to %s\n", len(paths), *reportDir)
		if *openReport && len(paths) > 0 {
			if err := report.OpenInBrowser(paths[0]); err != nil {
				logger.Warn("could not open browser", "error", err)
			}
		}
	}
	return nil
}

func printReview(ctx context.Context, cfg *config.Config, result *analysis.Result) {
	var client *llm.Client
	if cfg.LLM.Enabled || cfg.LLM.BaseURL != "" {
		llmCfg := llm.DefaultConfig()
		if cfg.LLM.BaseURL != "" {
			llmCfg.BaseURL = cfg.LLM.BaseURL
		}
		if cfg.LLM.Model != "" {
			llmCfg.Model = cfg.LLM.Model
		}
		client = llm.NewClient(llmCfg)
		checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		client.CheckAvailability(checkCtx)
		cancel()
	}

	narrator := llm.NewNarrator(client, nil)
	narrative, err := narrator.Review(ctx, result)
	if err != nil {
		return
	}
	fmt.Printf("\nReview (%s):\n%s\n", narrative.Source, narrative.Text)
}

func printDeckPrice(ctx context.Context, cfg *config.Config, imported *deckimport.Result, logger *slog.Logger) {
	priceCfg := pricing.DefaultConfig()
	if cfg.Pricing.BaseURL != "" {
		priceCfg.BaseURL = cfg.Pricing.BaseURL
	}
	if cfg.Pricing.RPM > 0 {
		priceCfg.RequestsPerMinute = cfg.Pricing.RPM
	}
	client := pricing.NewClient(priceCfg)

	dp, err := client.PriceDeck(ctx, imported.Deck)
	if err != nil {
		logger.Warn("price lookup failed", "error", err)
		return
	}
	printPrice(os.Stdout, dp)
}

func runImportCards(args []string) error {
	fs := flag.NewFlagSet("import-cards", flag.ExitOnError)
	file := fs.String("file", "", "Path to a bulk card JSON array (required)")
	configPath := fs.String("config", "", "Path to config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		fs.Usage()
		return fmt.Errorf("-file is required")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	db, err := openCatalog(cfg)
	if err != nil {
		return fmt.Errorf("opening card catalog: %w", err)
	}
	defer db.Close()

	f, err := os.Open(*file)
	if err != nil {
		return fmt.Errorf("opening card data: %w", err)
	}
	defer f.Close()

	start := time.Now()
	n, err := db.ImportBulk(context.Background(), f)
	if err != nil {
		return fmt.Errorf("importing cards: %w", err)
	}
	fmt.Printf("Imported %d cards in %s\n", n, time.Since(start).Round(time.Millisecond))
	return nil
}

func runBackup(args []string) error {
	fs := flag.NewFlagSet("backup", flag.ExitOnError)
	out := fs.String("out", "", "Backup file to write (required)")
	password := fs.String("password", "", "Encrypt the backup with this password")
	configPath := fs.String("config", "", "Path to config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" {
		fs.Usage()
		return fmt.Errorf("-out is required")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	db, err := openCatalog(cfg)
	if err != nil {
		return fmt.Errorf("opening card catalog: %w", err)
	}
	defer db.Close()

	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("creating backup file: %w", err)
	}
	defer f.Close()

	if err := db.Backup(context.Background(), f, *password); err != nil {
		return err
	}
	fmt.Printf("Backup written to %s\n", *out)
	return nil
}

func runRestore(args []string) error {
	fs := flag.NewFlagSet("restore", flag.ExitOnError)
	in := fs.String("in", "", "Backup file to restore (required)")
	password := fs.String("password", "", "Password for encrypted backups")
	configPath := fs.String("config", "", "Path to config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		fs.Usage()
		return fmt.Errorf("-in is required")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	db, err := openCatalog(cfg)
	if err != nil {
		return fmt.Errorf("opening card catalog: %w", err)
	}
	defer db.Close()

	f, err := os.Open(*in)
	if err != nil {
		return fmt.Errorf("opening backup file: %w", err)
	}
	defer f.Close()

	n, err := db.Restore(context.Background(), f, *password)
	if err != nil {
		return err
	}
	fmt.Printf("Restored %d cards\n", n)
	return nil
}

func runMeta(args []string) error {
	fs := flag.NewFlagSet("meta", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	debug := fs.Bool("debug", false, "Enable debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	provider, err := newMetaProvider(cfg, newLogger(*debug))
	if err != nil {
		return err
	}
	defer provider.Close()

	printSnapshot(os.Stdout, provider.Current())
	return nil
}
