package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/jask/contactimport/internal/config"
	"github.com/jask/contactimport/internal/contactsapi"
	"github.com/jask/contactimport/internal/database"
	"github.com/jask/contactimport/internal/database/repository"
	"github.com/jask/contactimport/internal/grid"
	"github.com/jask/contactimport/internal/prefs"
	"github.com/jask/contactimport/internal/secrets"
	"github.com/jask/contactimport/internal/service"
	"github.com/jask/contactimport/internal/testdata"
	"github.com/jask/contactimport/internal/tui"
	"github.com/jask/contactimport/internal/wizard"
)

type options struct {
	configPath string
	dbPath     string
	backend    string
	file       string
	logLevel   string
	reset      bool
	storeToken bool
	saveConfig bool
	list       int
	sample     int
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var opts options
	flags := pflag.NewFlagSet("contactimport", pflag.ContinueOnError)
	flags.StringVar(&opts.configPath, "config", "", "config file (default ~/.config/contactimport/config.toml)")
	flags.StringVar(&opts.dbPath, "db", "", "sqlite database path")
	flags.StringVar(&opts.backend, "backend", "", `where imports are created: "local" or "http"`)
	flags.StringVar(&opts.file, "file", "", "preload the grid from a .csv, .tsv or .xlsx file")
	flags.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")
	flags.BoolVar(&opts.reset, "reset", false, "delete every stored import and draft, then exit")
	flags.BoolVar(&opts.storeToken, "store-token", false, "read an API token for backend.base_url from stdin, store it, then exit")
	flags.BoolVar(&opts.saveConfig, "save-config", false, "write the effective settings to the config file, then exit")
	flags.IntVar(&opts.list, "list", 0, "print this many recent imports, then exit")
	flags.IntVar(&opts.sample, "sample", 0, "preload the grid with this many generated contacts")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	applyFlags(&cfg, opts)
	if err := cfg.Validate(); err != nil {
		return err
	}

	if opts.storeToken {
		return storeToken(cfg.Backend.BaseURL)
	}
	if opts.saveConfig {
		if err := config.Save(opts.configPath, cfg); err != nil {
			return err
		}
		fmt.Println("config saved")
		return nil
	}

	logger, closeLog, err := openLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := database.RunMigrations(cfg.Database.Path); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	if opts.reset {
		if err := (&service.MaintenanceService{DB: db}).Reset(ctx); err != nil {
			return err
		}
		fmt.Println("all imports and drafts deleted")
		return nil
	}

	local := &service.ImportService{
		Imports: repository.NewImportRepo(db),
		Drafts:  repository.NewDraftRepo(db),
		Logger:  logger.WithPrefix("service"),
	}
	if opts.list > 0 {
		return listImports(ctx, local.Imports, opts.list)
	}
	importer := service.Importer(local)
	if cfg.Backend.Kind == config.BackendHTTP {
		client := contactsapi.New(cfg.Backend.BaseURL, resolveToken(cfg.Backend, logger), cfg.Backend.Timeout)
		client.Logger = logger.WithPrefix("api")
		importer = client
	}

	inv := wizard.Inventory{}
	start := tui.StepSource
	if draft, ok, err := local.LoadDraft(ctx); err != nil {
		logger.Warn("load draft", "err", err)
	} else if ok {
		inv.Table, inv.Source = draft, tui.SourcePaste
	}
	if opts.sample > 0 {
		inv.Table, inv.Source = grid.FromRows(testdata.Contacts(opts.sample, 1)), tui.SourcePaste
		start = tui.StepCopyPaste
	}
	if opts.file != "" {
		t, err := service.LoadTableFile(opts.file)
		if err != nil {
			return fmt.Errorf("load %s: %w", opts.file, err)
		}
		inv.Table, inv.Source = t, opts.file
		start = tui.StepCopyPaste
	}

	var mappings tui.MappingMemory
	if path, err := prefs.DefaultPath(); err != nil {
		logger.Warn("mapping memory disabled", "err", err)
	} else {
		mappings = &prefs.MappingStore{Path: path, Normalize: service.NormalizeHeader}
	}

	steps := tui.Steps(ctx, tui.Deps{
		Importer:  importer,
		Drafts:    local,
		Mappings:  mappings,
		StartRows: cfg.Grid.Rows,
		StartCols: cfg.Grid.Cols,
		GridOpts: []grid.Option{
			grid.WithCellWidth(cfg.Grid.CellWidth),
			grid.WithDoubleClick(cfg.Grid.DoubleClick),
		},
	})
	w := wizard.New(inv, steps, wizard.WithLogger(logger.WithPrefix("wizard")), wizard.WithStart(start))

	logger.Info("starting", "backend", cfg.Backend.Kind, "db", cfg.Database.Path)
	p := tea.NewProgram(w, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	if fw, ok := final.(*wizard.Model); ok {
		if rec := fw.Inventory().Import; rec != nil {
			fmt.Printf("contact import %s: %s (%d rows)\n", rec.ID, rec.Status, rec.Rows())
		}
	}
	return nil
}

// resolveToken prefers the configured env var over the token store.
func resolveToken(b config.BackendConfig, logger *log.Logger) string {
	if tok := b.Token(); tok != "" {
		return tok
	}
	tok, err := secrets.FetchToken(b.BaseURL)
	if err != nil {
		if !errors.Is(err, secrets.ErrNoToken) {
			logger.Warn("token store", "err", err)
		}
		return ""
	}
	return tok
}

func listImports(ctx context.Context, repo *repository.ImportRepo, limit int) error {
	recs, err := repo.List(ctx, limit)
	if err != nil {
		return fmt.Errorf("list imports: %w", err)
	}
	for _, rec := range recs {
		fmt.Printf("%s  %-9s  %4d rows  %s\n", rec.ID, rec.Status, rec.Rows(), rec.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func storeToken(baseURL string) error {
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("read token: %w", err)
	}
	if err := secrets.StoreToken(baseURL, line); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	fmt.Printf("token stored for %s\n", baseURL)
	return nil
}

func applyFlags(cfg *config.Config, opts options) {
	if opts.dbPath != "" {
		cfg.Database.Path = opts.dbPath
	}
	if opts.backend != "" {
		cfg.Backend.Kind = strings.ToLower(opts.backend)
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
}

// openLogger writes to the configured log file; the terminal belongs to the TUI.
func openLogger(cfg config.LogConfig) (*log.Logger, func(), error) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("log level %q: %w", cfg.Level, err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("mkdir log dir: %w", err)
	}
	f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log: %w", err)
	}
	logger := log.NewWithOptions(f, log.Options{Level: level, ReportTimestamp: true})
	log.SetDefault(logger)
	return logger, func() { _ = f.Close() }, nil
}
