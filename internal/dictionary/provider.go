package dictionary

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Provider retrieves the dictionary payload for a language. The payload
// is immutable per language version and may be cached long-term.
type Provider interface {
	Fetch(ctx context.Context, language string) (DictionaryFiles, error)
}

// DirProvider serves dictionaries from a local directory laid out as
// <dir>/<language>.aff and <dir>/<language>.dic.
type DirProvider struct {
	Dir string
}

// Fetch reads the affix and word-list files for a language. A missing
// affix file is tolerated; a missing word list is not.
func (p DirProvider) Fetch(_ context.Context, language string) (DictionaryFiles, error) {
	var files DictionaryFiles

	words, err := os.ReadFile(filepath.Join(p.Dir, language+".dic"))
	if err != nil {
		return DictionaryFiles{}, fmt.Errorf("read word list: %w", err)
	}
	files.Words = words

	if affix, err := os.ReadFile(filepath.Join(p.Dir, language+".aff")); err == nil {
		files.Affix = affix
	}
	return files, nil
}

// StaticProvider serves fixed in-memory dictionaries, keyed by language.
type StaticProvider map[string]DictionaryFiles

// Fetch returns the stored payload for a language.
func (p StaticProvider) Fetch(_ context.Context, language string) (DictionaryFiles, error) {
	files, ok := p[language]
	if !ok {
		return DictionaryFiles{}, fmt.Errorf("no dictionary for %q", language)
	}
	return files, nil
}

// HTTP provider retry defaults.
const (
	defaultMaxAttempts    = 3
	defaultInitialBackoff = 500 * time.Millisecond
	defaultMaxBackoff     = 10 * time.Second
	backoffMultiplier     = 2.0
)

// HTTPProvider downloads dictionaries from a base URL serving
// <base>/<language>.aff and <base>/<language>.dic, retrying transient
// failures with exponential backoff. When CacheDir is set, fetched
// payloads are written there and served from disk on later calls; the
// payload is immutable per language so entries never expire.
type HTTPProvider struct {
	baseURL  string
	client   *http.Client
	cacheDir string

	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// HTTPProviderOption configures an HTTPProvider.
type HTTPProviderOption func(*HTTPProvider)

// WithHTTPClient sets the HTTP client used for downloads.
func WithHTTPClient(client *http.Client) HTTPProviderOption {
	return func(p *HTTPProvider) {
		if client != nil {
			p.client = client
		}
	}
}

// WithCacheDir enables the on-disk dictionary cache.
func WithCacheDir(dir string) HTTPProviderOption {
	return func(p *HTTPProvider) {
		p.cacheDir = dir
	}
}

// WithMaxAttempts sets the number of download attempts per file.
func WithMaxAttempts(n int) HTTPProviderOption {
	return func(p *HTTPProvider) {
		if n > 0 {
			p.maxAttempts = n
		}
	}
}

// WithInitialBackoff sets the backoff after the first failed attempt.
func WithInitialBackoff(d time.Duration) HTTPProviderOption {
	return func(p *HTTPProvider) {
		if d > 0 {
			p.initialBackoff = d
		}
	}
}

// NewHTTPProvider creates a provider downloading from baseURL.
func NewHTTPProvider(baseURL string, opts ...HTTPProviderOption) *HTTPProvider {
	p := &HTTPProvider{
		baseURL:        baseURL,
		client:         &http.Client{Timeout: 20 * time.Second},
		maxAttempts:    defaultMaxAttempts,
		initialBackoff: defaultInitialBackoff,
		maxBackoff:     defaultMaxBackoff,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Fetch returns the dictionary payload for a language, from the disk
// cache when present, otherwise downloaded and cached.
func (p *HTTPProvider) Fetch(ctx context.Context, language string) (DictionaryFiles, error) {
	if files, ok := p.readCache(language); ok {
		return files, nil
	}

	words, err := p.download(ctx, language+".dic")
	if err != nil {
		return DictionaryFiles{}, fmt.Errorf("fetch word list: %w", err)
	}
	affix, err := p.download(ctx, language+".aff")
	if err != nil {
		// Word-list-only dictionaries are usable without affix rules.
		affix = nil
	}

	files := DictionaryFiles{Affix: affix, Words: words}
	p.writeCache(language, files)
	return files, nil
}

// download fetches one file with retries.
func (p *HTTPProvider) download(ctx context.Context, name string) ([]byte, error) {
	url := p.baseURL + "/" + name

	var lastErr error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryBackoff(attempt-1, p.initialBackoff, p.maxBackoff)):
			}
		}

		data, err := p.get(ctx, url)
		if err == nil {
			return data, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%s after %d attempts: %w", name, p.maxAttempts, lastErr)
}

func (p *HTTPProvider) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func (p *HTTPProvider) readCache(language string) (DictionaryFiles, bool) {
	if p.cacheDir == "" {
		return DictionaryFiles{}, false
	}
	words, err := os.ReadFile(filepath.Join(p.cacheDir, language+".dic"))
	if err != nil {
		return DictionaryFiles{}, false
	}
	files := DictionaryFiles{Words: words}
	if affix, err := os.ReadFile(filepath.Join(p.cacheDir, language+".aff")); err == nil {
		files.Affix = affix
	}
	return files, true
}

func (p *HTTPProvider) writeCache(language string, files DictionaryFiles) {
	if p.cacheDir == "" {
		return
	}
	if err := os.MkdirAll(p.cacheDir, 0o755); err != nil {
		return
	}
	_ = os.WriteFile(filepath.Join(p.cacheDir, language+".dic"), files.Words, 0o644)
	if len(files.Affix) > 0 {
		_ = os.WriteFile(filepath.Join(p.cacheDir, language+".aff"), files.Affix, 0o644)
	}
}

// retryBackoff returns the exponential backoff delay for a failed
// attempt, capped at max.
func retryBackoff(attempt int, initial, max time.Duration) time.Duration {
	if attempt <= 1 {
		return initial
	}
	delay := float64(initial) * math.Pow(backoffMultiplier, float64(attempt-1))
	if delay > float64(max) {
		return max
	}
	return time.Duration(delay)
}
