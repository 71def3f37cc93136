package docxmerge

import (
	"bytes"
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Engine renders templates. It is safe for concurrent use: each render call
// owns its own Template.
type Engine struct {
	config   *Config
	cache    *TemplateCache
	logger   *zap.Logger
	format   Format
	expander *Expander

	cacheSize *int
}

// New creates a new engine from the global configuration.
func New() *Engine {
	return NewWithConfig(GetGlobalConfig())
}

// NewWithConfig creates a new engine with custom configuration.
func NewWithConfig(config *Config) *Engine {
	return NewWithOptions(WithConfig(config))
}

// Option represents a configuration option for the engine.
type Option func(*Engine)

// WithConfig returns an option that sets the engine configuration.
func WithConfig(config *Config) Option {
	return func(e *Engine) {
		if config == nil {
			config = DefaultConfig()
		}
		cp := *config
		e.config = &cp
	}
}

// WithCache returns an option that sets the cache size (0 disables caching).
// It takes precedence over the configuration wherever it appears in the
// option list.
func WithCache(maxSize int) Option {
	return func(e *Engine) {
		e.cacheSize = &maxSize
	}
}

// WithLogger returns an option that sets the engine logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithFormat returns an option that sets where placeholders and blocks are
// looked for. The default is WordFormat.
func WithFormat(format Format) Option {
	return func(e *Engine) {
		e.format = format
	}
}

// NewWithOptions creates a new engine with the specified options.
func NewWithOptions(opts ...Option) *Engine {
	e := &Engine{
		config: GetGlobalConfig(),
		format: WordFormat,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cacheSize != nil {
		e.config.CacheMaxSize = *e.cacheSize
	}
	if e.logger == nil {
		e.logger = GetLogger()
	}
	e.cache = NewTemplateCacheWithConfig(CacheConfig{
		MaxSize: e.config.CacheMaxSize,
		TTL:     e.config.CacheTTL,
	})
	e.expander = NewExpander(e.format)
	return e
}

// Config returns a copy of the engine's configuration.
func (e *Engine) Config() *Config {
	cp := *e.config
	return &cp
}

// Expander returns the expansion engine used by e.
func (e *Engine) Expander() *Expander { return e.expander }

// ClearCache removes all templates from the cache.
func (e *Engine) ClearCache() {
	e.cache.Clear()
}

// Close flushes the engine logger.
func (e *Engine) Close() error {
	_ = e.logger.Sync()
	return nil
}

// Job is one render request of a batch.
type Job struct {
	TemplatePath string
	Data         Data
}

// RenderBatch renders independent jobs concurrently, at most
// Config.MaxConcurrency at a time (0 means unbounded). Results are returned
// in job order. The first failure cancels the jobs that have not finished
// and is returned.
func (e *Engine) RenderBatch(ctx context.Context, jobs []Job) ([][]byte, error) {
	g, ctx := errgroup.WithContext(ctx)
	if e.config.MaxConcurrency > 0 {
		g.SetLimit(e.config.MaxConcurrency)
	}

	out := make([][]byte, len(jobs))
	for i, job := range jobs {
		g.Go(func() error {
			rendered, err := e.Render(ctx, job.TemplatePath, job.Data)
			if err != nil {
				return fmt.Errorf("job %d: %w", i, err)
			}
			out[i] = rendered
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// RenderBytes renders a template held in memory.
func (e *Engine) RenderBytes(ctx context.Context, template []byte, data Data) ([]byte, error) {
	tmpl, err := NewTemplate(bytes.NewReader(template), int64(len(template)))
	if err != nil {
		return nil, newRenderError(StageOpen, "", "", err)
	}
	return e.renderTemplate(ctx, tmpl, "", data)
}

// DefaultEngine is the global default engine instance.
var DefaultEngine = New()

// Render renders the template at templatePath with the default engine.
func Render(ctx context.Context, templatePath string, data Data) ([]byte, error) {
	return DefaultEngine.Render(ctx, templatePath, data)
}

// RenderMap renders with data taken from a map. Keys are processed in
// sorted order.
func RenderMap(ctx context.Context, templatePath string, data map[string]any) ([]byte, error) {
	return DefaultEngine.Render(ctx, templatePath, DataFromMap(data))
}
