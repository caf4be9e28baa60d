// Package extension provides the Forge extension adapter for token ledgers.
//
// It implements the forge.Extension interface to integrate a Ledger
// into a Forge application with automatic dependency discovery,
// DI registration, and lifecycle management.
//
// Configuration can be provided programmatically via Option functions,
// via YAML configuration files under "extensions.token" or "token" keys,
// or via TOKEN_* environment variables.
package extension

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/xraph/forge"
	"github.com/xraph/grove"
	"github.com/xraph/vessel"

	token "github.com/xraph/token"
	"github.com/xraph/token/store"
	"github.com/xraph/token/store/memory"
	mongostore "github.com/xraph/token/store/mongo"
	"github.com/xraph/token/store/postgres"
	"github.com/xraph/token/store/sqlite"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "token"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Fungible-value ledger with administrator controls"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts a token Ledger as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *token.Ledger
	store      store.Store
	groveDB    *grove.DB
	ledgerOpts []token.Option
}

// New creates a new token Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying Ledger instance.
// This is nil until Register is called.
func (e *Extension) Engine() *token.Ledger { return e.engine }

// Register implements [forge.Extension]. It loads configuration,
// initializes the ledger, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	s, err := e.buildStore()
	if err != nil {
		return err
	}
	e.store = s

	eng, err := token.NewFromConfig(e.config.LedgerConfig(), e.buildLedgerOpts()...)
	if err != nil {
		return fmt.Errorf("token: build ledger: %w", err)
	}
	e.engine = eng

	return vessel.Provide(fapp.Container(), func() (*token.Ledger, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("token: extension not initialized")
	}

	if err := e.engine.Start(ctx); err != nil {
		return err
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil && !errors.Is(err, token.ErrNotStarted) {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("token: extension not initialized")
	}
	if e.store == nil {
		return nil
	}
	return e.store.Ping(ctx)
}

// buildStore resolves the journal backend from the resolved config.
func (e *Extension) buildStore() (store.Store, error) {
	if e.config.DisableJournal {
		return nil, nil //nolint:nilnil // no journal is a valid configuration
	}
	if e.store != nil {
		return e.store, nil
	}

	driver := e.config.JournalDriver
	if e.groveDB == nil {
		if driver != "" && driver != DriverMemory {
			return nil, fmt.Errorf("token: journal driver %q requires WithGroveDB", driver)
		}
		return memory.New(), nil
	}

	switch driver {
	case DriverPostgres:
		return postgres.New(e.groveDB), nil
	case DriverSQLite:
		return sqlite.New(e.groveDB), nil
	case DriverMongo:
		return mongostore.New(e.groveDB), nil
	default:
		return nil, fmt.Errorf("token: unknown journal driver %q", driver)
	}
}

// buildLedgerOpts constructs the options applied after the config-derived ones.
func (e *Extension) buildLedgerOpts() []token.Option {
	opts := make([]token.Option, 0, len(e.ledgerOpts)+1)
	if e.store != nil {
		opts = append(opts, token.WithJournal(e.store))
	}

	// Append any pass-through ledger options.
	opts = append(opts, e.ledgerOpts...)

	return opts
}

// --- Config Loading (mirrors grove/shield extension pattern) ---

// loadConfiguration loads config from YAML files, the environment, or
// programmatic sources, in that order of precedence.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file, then from the environment.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()
	if !configLoaded {
		var err error
		fileConfig, configLoaded, err = tryLoadFromEnv()
		if err != nil {
			return err
		}
	}

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("token: configuration is required but not found in config files or environment; " +
				"ensure 'extensions.token' or 'token' key exists in your config")
		}

		// Use programmatic config merged with defaults.
		e.config = mergeWithDefaults(programmaticConfig)
	} else {
		// Config loaded from YAML or env -- merge with programmatic options.
		e.config = mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("token: configuration loaded",
		forge.F("name", e.config.Name),
		forge.F("symbol", e.config.Symbol),
		forge.F("decimals", e.config.decimals()),
		forge.F("strict_pause", e.config.StrictPause),
		forge.F("disable_journal", e.config.DisableJournal),
		forge.F("journal_driver", e.config.JournalDriver),
		forge.F("journal_batch_size", e.config.JournalBatchSize),
		forge.F("journal_flush_interval", e.config.JournalFlushInterval),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	// Try "extensions.token" first (namespaced pattern).
	if cm.IsSet("extensions.token") {
		if err := cm.Bind("extensions.token", &cfg); err == nil {
			e.Logger().Debug("token: loaded config from file",
				forge.F("key", "extensions.token"),
			)
			return cfg, true
		}
		e.Logger().Warn("token: failed to bind extensions.token config",
			forge.F("error", "bind failed"),
		)
	}

	// Try legacy "token" key.
	if cm.IsSet("token") {
		if err := cm.Bind("token", &cfg); err == nil {
			e.Logger().Debug("token: loaded config from file",
				forge.F("key", "token"),
			)
			return cfg, true
		}
		e.Logger().Warn("token: failed to bind token config",
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// tryLoadFromEnv reads TOKEN_* variables. The environment only counts as a
// config source when TOKEN_SYMBOL or TOKEN_ADMINISTRATOR is set.
func tryLoadFromEnv() (Config, bool, error) {
	_, hasSymbol := os.LookupEnv("TOKEN_SYMBOL")
	_, hasAdmin := os.LookupEnv("TOKEN_ADMINISTRATOR")
	if !hasSymbol && !hasAdmin {
		return Config{}, false, nil
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, false, fmt.Errorf("token: parse env: %w", err)
	}
	return cfg, true, nil
}

// mergeWithDefaults fills unset fields with defaults.
func mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.Decimals == nil {
		cfg.Decimals = defaults.Decimals
	}
	if cfg.JournalDriver == "" {
		cfg.JournalDriver = defaults.JournalDriver
	}
	if cfg.JournalBatchSize == 0 {
		cfg.JournalBatchSize = defaults.JournalBatchSize
	}
	if cfg.JournalFlushInterval == 0 {
		cfg.JournalFlushInterval = defaults.JournalFlushInterval
	}
	if cfg.PluginTimeout == 0 {
		cfg.PluginTimeout = defaults.PluginTimeout
	}
	return cfg
}

// mergeConfigurations merges file or env config with programmatic options.
// Loaded config takes precedence for most fields; programmatic values fill gaps.
func mergeConfigurations(loaded, programmatic Config) Config {
	// Programmatic bool flags override when true.
	if programmatic.StrictPause {
		loaded.StrictPause = true
	}
	if programmatic.DisableJournal {
		loaded.DisableJournal = true
	}

	// String fields: loaded config takes precedence.
	if loaded.Name == "" {
		loaded.Name = programmatic.Name
	}
	if loaded.Symbol == "" {
		loaded.Symbol = programmatic.Symbol
	}
	if loaded.Administrator == "" {
		loaded.Administrator = programmatic.Administrator
	}
	if loaded.JournalDriver == "" {
		loaded.JournalDriver = programmatic.JournalDriver
	}

	// Numeric fields: loaded config takes precedence, programmatic fills gaps.
	if loaded.Decimals == nil {
		loaded.Decimals = programmatic.Decimals
	}
	if loaded.JournalBatchSize == 0 {
		loaded.JournalBatchSize = programmatic.JournalBatchSize
	}
	if loaded.JournalFlushInterval == 0 {
		loaded.JournalFlushInterval = programmatic.JournalFlushInterval
	}
	if loaded.PluginTimeout == 0 {
		loaded.PluginTimeout = programmatic.PluginTimeout
	}

	// Fill remaining zeros with defaults.
	return mergeWithDefaults(loaded)
}
