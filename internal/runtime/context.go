// Package runtime provides the application runtime context for Voicetime.
// The store handle is constructed exactly once here and injected into every
// consumer; nothing reaches for a global database.
package runtime

import (
	"os"

	"github.com/voicetimeapp/voicetime/internal/categorize"
	"github.com/voicetimeapp/voicetime/internal/output"
	"github.com/voicetimeapp/voicetime/internal/storage"
)

// Context holds the application runtime context.
type Context struct {
	DB        *storage.DB
	Formatter *output.Formatter

	// Repositories
	EntryRepo    *storage.EntryRepo
	CategoryRepo *storage.CategoryRepo
	SettingsRepo *storage.SettingsRepo

	// AudioDir is where completed recordings are retained.
	AudioDir string

	// Debug mode
	Debug bool
}

// Options configures the runtime context.
type Options struct {
	DBPath    string
	InMemory  bool
	Format    output.Format
	ColorMode output.ColorMode
	Debug     bool
}

// DefaultOptions returns default runtime options.
func DefaultOptions() Options {
	return Options{
		DBPath:    storage.DefaultPath(),
		InMemory:  false,
		Format:    output.FormatCLI,
		ColorMode: output.ColorAuto,
		Debug:     false,
	}
}

// New creates a new runtime context.
func New(opts Options) (*Context, error) {
	// Check for environment variable override
	if envPath := os.Getenv("VOICETIME_DATABASE"); envPath != "" {
		if envPath == ":memory:" {
			opts.InMemory = true
		} else {
			opts.DBPath = envPath
		}
	}

	db, err := storage.Open(storage.Options{
		Path:     opts.DBPath,
		InMemory: opts.InMemory,
	})
	if err != nil {
		return nil, err
	}

	entryRepo := storage.NewEntryRepo(db)
	categoryRepo := storage.NewCategoryRepo(db)
	settingsRepo := storage.NewSettingsRepo(db)

	// First run seeds the default category set, including "other", so the
	// categorization fallback always has a target.
	if err := categoryRepo.SeedDefaults(); err != nil {
		db.Close()
		return nil, err
	}

	formatter := output.NewFormatter()
	formatter.Format = opts.Format
	formatter.ColorMode = opts.ColorMode

	return &Context{
		DB:           db,
		Formatter:    formatter,
		EntryRepo:    entryRepo,
		CategoryRepo: categoryRepo,
		SettingsRepo: settingsRepo,
		AudioDir:     storage.AudioDir(),
		Debug:        opts.Debug,
	}, nil
}

// Close closes the runtime context.
func (c *Context) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// IsJSON returns true if output format is JSON.
func (c *Context) IsJSON() bool {
	return c.Formatter.Format == output.FormatJSON
}

// APIKey resolves the model API key: the environment takes priority over the
// stored settings value.
func (c *Context) APIKey() (string, error) {
	if key := os.Getenv("VOICETIME_API_KEY"); key != "" {
		return key, nil
	}
	settings, err := c.SettingsRepo.Get()
	if err != nil {
		return "", err
	}
	return settings.APIKey, nil
}

// Categorizer builds the categorization client from the environment: a
// proxy client when VOICETIME_PROXY_URL is set, otherwise a direct model
// client.
func (c *Context) Categorizer() (categorize.Categorizer, error) {
	if proxyURL := os.Getenv("VOICETIME_PROXY_URL"); proxyURL != "" {
		return categorize.NewProxyClient(proxyURL), nil
	}

	key, err := c.APIKey()
	if err != nil {
		return nil, err
	}
	return categorize.NewModelClient(os.Getenv("VOICETIME_API_URL"), os.Getenv("VOICETIME_MODEL"), key), nil
}
