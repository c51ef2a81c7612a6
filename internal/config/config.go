package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Storage backend constants
	StorageFile   = "file"
	StorageSQLite = "sqlite"
	StorageNone   = "none"

	// Default values
	DefaultTemplateName    = "Ausleihe_leer.pdf"
	DefaultLogLevel        = "info"
	DefaultMaxTemplateSize = 20 * 1024 * 1024 // 20MB

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Config holds all configuration for the slip tool. Read-only after
// LoadFromFlags; the run never mutates it.
type Config struct {
	// Template and output
	TemplatePath    string
	OutputDir       string
	MaxTemplateSize int64 // Maximum template file size in bytes

	// Loan registry
	Storage     string // "file", "sqlite" or "none"
	StoragePath string

	// Step toggles
	NoReminder bool
	NoOpen     bool

	// Commands (instead of issuing a slip)
	ListLoans  bool
	ReturnedID string

	// Application configuration
	Version  string
	LogLevel string
}

// DefaultConfig returns a configuration with sensible defaults. The
// template is expected next to the executable, falling back to the
// working directory.
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		TemplatePath:    defaultTemplatePath(currentDir),
		OutputDir:       currentDir,
		MaxTemplateSize: DefaultMaxTemplateSize,
		Storage:         StorageFile,
		Version:         "1.1.0",
		LogLevel:        DefaultLogLevel,
	}
}

// defaultTemplatePath prefers the template shipped next to the
// executable; the working-directory copy is the fallback when the bundled
// one is absent.
func defaultTemplatePath(currentDir string) string {
	if exe, err := os.Executable(); err == nil {
		bundled := filepath.Join(filepath.Dir(exe), DefaultTemplateName)
		if _, err := os.Stat(bundled); err == nil {
			return bundled
		}
	}
	return filepath.Join(currentDir, DefaultTemplateName)
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Expand paths if needed
	if expandedPath, err := filepath.Abs(cfg.TemplatePath); err == nil {
		cfg.TemplatePath = expandedPath
	}
	if expandedPath, err := filepath.Abs(cfg.OutputDir); err == nil {
		cfg.OutputDir = expandedPath
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix("LEIHSCHEIN")
	viper.AutomaticEnv()

	viper.SetDefault("template", cfg.TemplatePath)
	viper.SetDefault("outdir", cfg.OutputDir)
	viper.SetDefault("storage", cfg.Storage)
	viper.SetDefault("storagepath", cfg.StoragePath)
	viper.SetDefault("noreminder", cfg.NoReminder)
	viper.SetDefault("noopen", cfg.NoOpen)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxtemplatesize", cfg.MaxTemplateSize)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("template", cfg.TemplatePath, "Path to the slip template PDF")
	pflag.String("outdir", cfg.OutputDir, "Directory the generated slip is written to")
	pflag.String("storage", cfg.Storage, "Loan registry backend: 'file', 'sqlite' or 'none'")
	pflag.String("storagepath", cfg.StoragePath, "Path of the loan registry (defaults into the output directory)")
	pflag.Bool("noreminder", cfg.NoReminder, "Skip creating the return reminder")
	pflag.Bool("noopen", cfg.NoOpen, "Skip opening the generated slip")
	pflag.Bool("list", false, "List recorded loans instead of issuing a slip")
	pflag.String("returned", "", "Mark the loan with the given id as returned")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxtemplatesize", cfg.MaxTemplateSize, "Maximum template file size in bytes")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	_ = viper.BindPFlag("template", pflag.Lookup("template"))
	_ = viper.BindPFlag("outdir", pflag.Lookup("outdir"))
	_ = viper.BindPFlag("storage", pflag.Lookup("storage"))
	_ = viper.BindPFlag("storagepath", pflag.Lookup("storagepath"))
	_ = viper.BindPFlag("noreminder", pflag.Lookup("noreminder"))
	_ = viper.BindPFlag("noopen", pflag.Lookup("noopen"))
	_ = viper.BindPFlag("list", pflag.Lookup("list"))
	_ = viper.BindPFlag("returned", pflag.Lookup("returned"))
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
	_ = viper.BindPFlag("maxtemplatesize", pflag.Lookup("maxtemplatesize"))
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nLeihschein - issues equipment loan slips from the bundled PDF template\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                         # issue a slip interactively\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --outdir=/tmp/slips     # write slip and reminder elsewhere\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --list                  # show recorded loans\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --returned=<id>         # mark a loan as returned\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  LEIHSCHEIN_TEMPLATE        Template PDF path\n")
		fmt.Fprintf(os.Stderr, "  LEIHSCHEIN_OUTDIR          Output directory\n")
		fmt.Fprintf(os.Stderr, "  LEIHSCHEIN_STORAGE         Registry backend\n")
		fmt.Fprintf(os.Stderr, "  LEIHSCHEIN_STORAGEPATH     Registry path\n")
		fmt.Fprintf(os.Stderr, "  LEIHSCHEIN_LOGLEVEL        Log level\n")
	}
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.TemplatePath = viper.GetString("template")
	cfg.OutputDir = viper.GetString("outdir")
	cfg.Storage = viper.GetString("storage")
	cfg.StoragePath = viper.GetString("storagepath")
	cfg.NoReminder = viper.GetBool("noreminder")
	cfg.NoOpen = viper.GetBool("noopen")
	cfg.ListLoans = viper.GetBool("list")
	cfg.ReturnedID = viper.GetString("returned")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxTemplateSize = viper.GetInt64("maxtemplatesize")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Storage {
	case StorageFile, StorageSQLite, StorageNone:
	default:
		return fmt.Errorf("storage must be one of: %s, %s, %s", StorageFile, StorageSQLite, StorageNone)
	}

	if c.OutputDir == "" {
		return errors.New("output directory cannot be empty")
	}
	if _, err := os.Stat(c.OutputDir); os.IsNotExist(err) {
		if err := os.MkdirAll(c.OutputDir, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create output directory %s: %w", c.OutputDir, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access output directory %s: %w", c.OutputDir, err)
	}

	if c.StoragePath == "" {
		switch c.Storage {
		case StorageFile:
			c.StoragePath = filepath.Join(c.OutputDir, "leihschein-registry.json")
		case StorageSQLite:
			c.StoragePath = filepath.Join(c.OutputDir, "leihschein-registry.db")
		}
	}

	if c.MaxTemplateSize <= 0 {
		return errors.New("maximum template size must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Template: %s, OutputDir: %s, Storage: %s, StoragePath: %s, LogLevel: %s}",
		c.TemplatePath, c.OutputDir, c.Storage, c.StoragePath, c.LogLevel)
}
