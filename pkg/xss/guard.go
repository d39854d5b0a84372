package xss

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
)

var ErrBlocked = errors.New("xss signature detected")

type Config struct {
	Block         bool     `mapstructure:"block"`
	Patterns      []string `mapstructure:"patterns"`
	PatternAppend bool     `mapstructure:"pattern_append"`
}

// DecodeConfig reads guard settings from a generic map, as found in yaml or json documents.
// String values coming from environment variables ("true", a single pattern) are accepted.
func DecodeConfig(settings map[string]interface{}) (Config, error) {
	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return Config{}, fmt.Errorf("failed to create guard config decoder: %w", err)
	}
	if err := decoder.Decode(settings); err != nil {
		return Config{}, fmt.Errorf("failed to decode guard config: %w", err)
	}
	return cfg, nil
}

// Detection describes one request in which at least one pattern matched.
type Detection struct {
	ID           string    `json:"id"`
	Time         time.Time `json:"time"`
	Method       string    `json:"method"`
	OriginalURL  string    `json:"original_url"`
	SanitizedURL string    `json:"sanitized_url"`
	Stripped     []Match   `json:"stripped"`
	Blocked      bool      `json:"blocked"`
	ClientIP     string    `json:"client_ip,omitempty"`
	UserAgent    string    `json:"user_agent,omitempty"`
}

type Observer interface {
	Observe(ctx context.Context, d Detection)
}

type ObserverFunc func(ctx context.Context, d Detection)

func (f ObserverFunc) Observe(ctx context.Context, d Detection) {
	f(ctx, d)
}

// Observers fans a detection out to every non-nil observer in order.
type Observers []Observer

func (o Observers) Observe(ctx context.Context, d Detection) {
	for _, obs := range o {
		if obs != nil {
			obs.Observe(ctx, d)
		}
	}
}

type guardOptions struct {
	filter   FilterFunc
	observer Observer
}

type Option func(*guardOptions)

// WithFilter replaces the default filter. A nil filter keeps the default.
func WithFilter(filter FilterFunc) Option {
	return func(o *guardOptions) {
		if filter != nil {
			o.filter = filter
		}
	}
}

func WithObserver(observer Observer) Option {
	return func(o *guardOptions) {
		if observer != nil {
			o.observer = observer
		}
	}
}

// Guard holds the resolved pattern set and policy. It keeps no per-request state and
// is safe for concurrent use.
type Guard struct {
	patterns PatternSet
	block    bool
	filter   FilterFunc
	observer Observer
}

func NewGuard(cfg Config, opts ...Option) (*Guard, error) {
	patterns, err := ResolvePatternSet(cfg.Patterns, cfg.PatternAppend)
	if err != nil {
		return nil, err
	}
	o := guardOptions{filter: Filter}
	for _, opt := range opts {
		opt(&o)
	}
	return &Guard{
		patterns: patterns,
		block:    cfg.Block,
		filter:   o.filter,
		observer: o.observer,
	}, nil
}

func (g *Guard) Patterns() PatternSet {
	return g.patterns
}

func (g *Guard) Blocking() bool {
	return g.block
}

// Inspect runs the active filter on rawURL. It returns ErrBlocked together with the
// outcome when block mode is on and this call matched.
func (g *Guard) Inspect(rawURL string) (Outcome, error) {
	out := g.filter(rawURL, g.patterns)
	if g.block && out.Matched {
		return out, ErrBlocked
	}
	return out, nil
}

// Notify hands a detection to the attached observer, if any.
func (g *Guard) Notify(ctx context.Context, d Detection) {
	if g.observer == nil {
		return
	}
	g.observer.Observe(ctx, d)
}
