package app

import (
	"context"
	"fmt"
	"syscall"
	"time"

	"github.com/andy/invoicedesk/internal/config"
	"github.com/andy/invoicedesk/internal/crypto"
	"github.com/andy/invoicedesk/internal/db"
	"github.com/andy/invoicedesk/internal/domain"
	"github.com/andy/invoicedesk/internal/logger"
	"github.com/andy/invoicedesk/internal/repository"
	"github.com/andy/invoicedesk/internal/service"
	"github.com/cockroachdb/errors"
	"golang.org/x/term"
)

// App is the dependency injection container for all application components
type App struct {
	Config     *config.Config
	ConfigPath string
	Logger     *logger.Logger

	// DB is nil unless the sqlite driver is in use
	DB    *db.DB
	Store repository.InvoiceStore

	Invoices service.Controller
}

// Options tweaks how an App is wired
type Options struct {
	// ConfigPath defaults to config.DefaultConfigPath()
	ConfigPath string

	// Driver overrides the configured storage driver
	Driver string

	// Keyring defaults to crypto.NewKeyring()
	Keyring crypto.Keyring

	// PromptPassword is asked for a new database key when the keyring has none
	PromptPassword func() (string, error)

	Now func() time.Time
}

// New creates a new App instance, initializing all dependencies.
// It handles:
// 1. Loading config
// 2. Opening the configured invoice store
// 3. Loading the collection into the controller
func New(ctx context.Context, opts Options) (*App, error) {
	if opts.ConfigPath == "" {
		opts.ConfigPath = config.DefaultConfigPath()
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}

	return NewWithConfig(ctx, cfg, opts)
}

// NewWithConfig creates an App with a provided config (useful for testing)
func NewWithConfig(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	if opts.Driver != "" {
		cfg.Database.Driver = opts.Driver
	}

	// Ensure all necessary directories exist
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, errors.Wrap(err, "failed to create directories")
	}

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create logger")
	}

	a := &App{
		Config:     cfg,
		ConfigPath: opts.ConfigPath,
		Logger:     log,
	}

	if err := a.openStore(opts); err != nil {
		log.Sync()
		return nil, err
	}

	a.Invoices = service.NewController(ctx, service.ControllerConfig{
		Store:        a.Store,
		Logger:       log.With("component", "controller"),
		Notifier:     service.LogNotifier{Log: log},
		Defaults:     func() domain.Defaults { return a.Config.InvoiceDefaults() },
		NumberPrefix: func() string { return a.Config.Invoice.NumberPrefix },
		Now:          opts.Now,
	})

	log.Infow("app started", "driver", cfg.Database.Driver, "path", cfg.Database.Path)
	return a, nil
}

func (a *App) openStore(opts Options) error {
	cfg := a.Config.Database

	switch cfg.Driver {
	case config.DriverMemory:
		a.Store = repository.NewMemoryStore()
		return nil

	case config.DriverFile:
		a.Store = repository.NewFileStore(cfg.Path)
		return nil

	case config.DriverSQLite, "":
		keyring := opts.Keyring
		if keyring == nil {
			keyring = crypto.NewKeyring()
		}
		prompt := opts.PromptPassword
		if prompt == nil {
			prompt = promptForPassword
		}

		// Try to get existing encryption key
		password, err := keyring.GetKey()
		if err != nil {
			// No key exists, prompt user to set one
			password, err = prompt()
			if err != nil {
				return errors.Wrap(err, "failed to set password")
			}

			// Without a keyring the key lasts for this session only
			if err := keyring.SetKey(password); err != nil {
				a.Logger.Warnw("could not store encryption key", "error", err)
			}
		}

		database, err := db.Open(cfg.Path, password)
		if err != nil {
			return errors.Wrap(err, "failed to open database")
		}

		// Run migrations to ensure schema is up to date
		if err := database.RunMigrations(); err != nil {
			database.Close()
			return errors.Wrap(err, "failed to run migrations")
		}

		a.DB = database
		a.Store = repository.NewSQLiteStore(database)
		return nil

	default:
		return errors.Newf("unknown storage driver %q", cfg.Driver)
	}
}

// Close cleanly shuts down the application
func (a *App) Close() error {
	defer a.Logger.Sync()
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

// SaveConfig saves the current configuration to disk
func (a *App) SaveConfig() error {
	path := a.ConfigPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	return a.Config.Save(path)
}

// promptForPassword prompts user for a new database password (first run)
// This should be called when keyring has no stored key
func promptForPassword() (string, error) {
	fmt.Println("Setting up database encryption for the first time...")
	fmt.Println()
	fmt.Println("Your invoices will be encrypted with a password.")
	fmt.Println("This password will be stored securely in your system keyring.")
	fmt.Printf("Set %s to supply it without a keyring.\n", crypto.KeyEnv)
	fmt.Println()
	fmt.Print("Enter a password for database encryption: ")

	// Read password securely (no echo)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println() // New line after password input
	if err != nil {
		return "", errors.Wrap(err, "failed to read password")
	}

	if len(password) == 0 {
		return "", crypto.ErrEmptyKey
	}

	// Confirm password
	fmt.Print("Confirm password: ")
	confirm, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println() // New line after confirmation
	if err != nil {
		return "", errors.Wrap(err, "failed to read confirmation")
	}

	if string(password) != string(confirm) {
		return "", errors.New("passwords do not match")
	}

	fmt.Println()
	fmt.Println("✓ Database encryption configured successfully")
	fmt.Println()

	return string(password), nil
}
