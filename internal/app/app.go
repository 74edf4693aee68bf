// Package app wires the spellstorm components into a running instance:
// configuration, logging, the document host, the dictionary engine and
// client, and the spell checking orchestration on top of them.
package app

import (
	"context"
	"io"

	"github.com/dshills/spellstorm/internal/config"
	"github.com/dshills/spellstorm/internal/dictionary"
	"github.com/dshills/spellstorm/internal/document"
	"github.com/dshills/spellstorm/internal/extract"
	"github.com/dshills/spellstorm/internal/spell"
)

// App is one spellstorm instance bound to a single document.
type App struct {
	cfg    *config.Config
	log    *Logger
	doc    *document.Document
	client *dictionary.Client

	service    *spell.Service
	scheduler  *spell.Scheduler
	controller *spell.Controller
}

// Option configures an App.
type Option func(*options)

type options struct {
	logOutput io.Writer
	provider  dictionary.Provider
	onCommit  func(*spell.ScanState)
}

// WithLogOutput directs application logs to w instead of stderr.
func WithLogOutput(w io.Writer) Option {
	return func(o *options) {
		o.logOutput = w
	}
}

// WithProvider overrides the dictionary provider chosen from config.
func WithProvider(p dictionary.Provider) Option {
	return func(o *options) {
		o.provider = p
	}
}

// WithCommitHook registers a callback for every committed scan state.
func WithCommitHook(fn func(*spell.ScanState)) Option {
	return func(o *options) {
		o.onCommit = fn
	}
}

// New assembles an App for the given document text. The configuration
// must already be validated.
func New(cfg *config.Config, text string, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	log := NewLogger(o.logOutput, ParseLogLevel(cfg.Logging.Level))

	provider := o.provider
	if provider == nil {
		if cfg.Provider.BaseURL != "" {
			var popts []dictionary.HTTPProviderOption
			if cfg.Provider.CacheDir != "" {
				popts = append(popts, dictionary.WithCacheDir(cfg.Provider.CacheDir))
			}
			provider = dictionary.NewHTTPProvider(cfg.Provider.BaseURL, popts...)
		} else {
			provider = dictionary.DirProvider{Dir: cfg.Provider.Dir}
		}
	}

	crashLog := log.WithComponent("dictionary")
	client := dictionary.NewClient(
		func() *dictionary.Engine {
			return dictionary.NewEngine(dictionary.NewWordListChecker(), provider)
		},
		dictionary.WithRequestTimeout(cfg.RequestTimeout()),
		dictionary.WithCrashHandler(func(err error) {
			crashLog.Error("dictionary engine crashed: %v", err)
		}),
	)

	service, err := spell.NewService(client,
		spell.WithMinWordLength(cfg.MinWordLength),
		spell.WithMaxSuggestions(cfg.MaxSuggestions),
	)
	if err != nil {
		return nil, err
	}

	doc := document.New(text)
	scheduler := spell.NewScheduler(doc, service, cfg.Language, cfg.Enabled,
		spell.WithDebounce(cfg.Debounce()),
		spell.WithExtraction(extract.Options{MinLength: cfg.MinWordLength}),
		spell.WithSchedulerLogger(log.WithComponent("scheduler")),
		spell.WithCommitHook(o.onCommit),
	)
	controller := spell.NewController(client, service, scheduler,
		spell.WithControllerLogger(log.WithComponent("controller")),
	)

	doc.OnChange(scheduler.DocumentChanged)

	return &App{
		cfg:        cfg,
		log:        log,
		doc:        doc,
		client:     client,
		service:    service,
		scheduler:  scheduler,
		controller: controller,
	}, nil
}

// Start loads the configured dictionary and runs the initial scan when
// checking is enabled.
func (a *App) Start(ctx context.Context) error {
	if a.cfg.Enabled {
		if err := a.client.LoadDictionary(ctx, a.cfg.Language); err != nil {
			a.log.Error("dictionary load failed for %s: %v", a.cfg.Language, err)
			return err
		}
	}
	a.scheduler.Start()
	return nil
}

// Stop cancels in-flight work and shuts the dictionary engine down.
func (a *App) Stop() {
	a.scheduler.Stop()
	a.client.Terminate()
}

// ReplaceAll replaces every whole-word instance of word in the document
// with replacement, in one atomic batch edit. It returns the number of
// instances replaced.
func (a *App) ReplaceAll(word, replacement string) (int, error) {
	snap := a.doc.Snapshot()
	spans := extract.FindAllInstances(snap, word)
	if len(spans) == 0 {
		return 0, nil
	}
	edits := make([]document.Edit, len(spans))
	for i, sp := range spans {
		edits[i] = document.Edit{Start: sp.Start, End: sp.End, Text: replacement}
	}
	if err := a.doc.ApplyEdits(edits); err != nil {
		return 0, err
	}
	return len(spans), nil
}

// Document returns the document host.
func (a *App) Document() *document.Document {
	return a.doc
}

// Controller returns the configuration controller.
func (a *App) Controller() *spell.Controller {
	return a.controller
}

// Scheduler returns the scan scheduler.
func (a *App) Scheduler() *spell.Scheduler {
	return a.scheduler
}

// Service returns the spell checking service.
func (a *App) Service() *spell.Service {
	return a.service
}

// Logger returns the application logger.
func (a *App) Logger() *Logger {
	return a.log
}
