package config

import (
	"os"
	"path/filepath"

	"github.com/andy/invoicedesk/internal/domain"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage drivers
const (
	DriverSQLite = "sqlite"
	DriverFile   = "file"
	DriverMemory = "memory"
)

// Environment overrides
const (
	EnvDBPath   = "INVOICEDESK_DB_PATH"
	EnvDBDriver = "INVOICEDESK_DB_DRIVER"
	EnvLogLevel = "INVOICEDESK_LOG_LEVEL"
)

type Config struct {
	// Database settings
	Database DatabaseConfig `yaml:"database"`

	// Invoice defaults
	Invoice InvoiceConfig `yaml:"invoice"`

	// Issuer details printed in the remit-to block
	Business BusinessConfig `yaml:"business"`

	Log LogConfig `yaml:"log"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite, file or memory
	Path   string `yaml:"path"`   // Path to the SQLite database or JSON document
}

type InvoiceConfig struct {
	NumberPrefix        string `yaml:"number_prefix"`    // Invoice number prefix (e.g., "INV")
	DefaultDueDays      int    `yaml:"default_due_days"` // Days until invoice due
	OutputDir           string `yaml:"output_dir"`       // Directory for printed invoices
	Notes               string `yaml:"notes"`
	PaymentInstructions string `yaml:"payment_instructions"`
	PaymentLabel        string `yaml:"payment_label"`
	TermsTitle          string `yaml:"terms_title"`
}

type BusinessConfig struct {
	Name        string `yaml:"name"`
	Email       string `yaml:"email"`
	Address     string `yaml:"address"`
	BankDetails string `yaml:"bank_details"`
	Contact     string `yaml:"contact"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

// DefaultConfigPath returns ~/.config/invoicedesk/config.yaml
func DefaultConfigPath() string {
	return filepath.Join(baseDir(), "config.yaml")
}

func baseDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home dir unavailable
		return filepath.Join(".", ".config", "invoicedesk")
	}
	return filepath.Join(homeDir, ".config", "invoicedesk")
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	dir := baseDir()

	return &Config{
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			Path:   filepath.Join(dir, "invoicedesk.db"),
		},
		Invoice: InvoiceConfig{
			NumberPrefix:        "INV",
			DefaultDueDays:      domain.DefaultDueDays,
			OutputDir:           filepath.Join(dir, "invoices"),
			Notes:               "Thank you for your business!",
			PaymentInstructions: "Please include the invoice number with your payment.",
			PaymentLabel:        "Payment Details",
			TermsTitle:          "Terms & Conditions",
		},
		Business: BusinessConfig{
			Name:        "[Your Name]",
			Email:       "[Your Email]",
			Address:     "[Your Address]",
			BankDetails: "[Bank Details]",
			Contact:     "[Contact]",
		},
		Log: LogConfig{
			Level: "info",
			Path:  filepath.Join(dir, "invoicedesk.log"),
		},
	}
}

// Load loads config from the given path, or returns defaults if file doesn't exist.
// Environment overrides are applied last in both cases.
func Load(path string) (*Config, error) {
	// A missing .env is fine
	_ = godotenv.Load()

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// LoadDefault loads from the default config path
func LoadDefault() (*Config, error) {
	return Load(DefaultConfigPath())
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDBPath); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv(EnvDBDriver); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
}

// Save writes the config to the given path
func (c *Config) Save(path string) error {
	// Create parent directories if they don't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// EnsureDirectories creates all necessary directories (storage, printed invoices, logs)
func (c *Config) EnsureDirectories() error {
	if c.Database.Driver != DriverMemory {
		if err := os.MkdirAll(filepath.Dir(c.Database.Path), 0755); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(c.Invoice.OutputDir, 0755); err != nil {
		return err
	}

	if c.Log.Path != "" && c.Log.Path != "stderr" {
		if err := os.MkdirAll(filepath.Dir(c.Log.Path), 0755); err != nil {
			return err
		}
	}

	return nil
}

// InvoiceDefaults returns the values a new invoice starts from. The invoice
// number is left empty; the controller fills it from the collection.
func (c *Config) InvoiceDefaults() domain.Defaults {
	return domain.Defaults{
		DueDays: c.Invoice.DefaultDueDays,
		RemitTo: domain.RemitTo{
			Name:        c.Business.Name,
			Email:       c.Business.Email,
			Address:     c.Business.Address,
			BankDetails: c.Business.BankDetails,
			Contact:     c.Business.Contact,
		},
		Notes:               c.Invoice.Notes,
		PaymentInstructions: c.Invoice.PaymentInstructions,
		PaymentLabel:        c.Invoice.PaymentLabel,
		TermsTitle:          c.Invoice.TermsTitle,
	}
}
