package region

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

//go:embed bundles/*.yaml
var builtin embed.FS

// Provider yields a bundle. Static bundles are used as-is; ProviderFunc
// builds a fresh one on every call.
type Provider interface {
	Bundle() (*Bundle, error)
}

type ProviderFunc func() (*Bundle, error)

func (f ProviderFunc) Bundle() (*Bundle, error) { return f() }

type staticProvider struct{ b *Bundle }

func (p staticProvider) Bundle() (*Bundle, error) { return p.b, nil }

// Static wraps an existing bundle.
func Static(b *Bundle) Provider { return staticProvider{b} }

// Loader resolves a candidate location, such as "texas.yaml", to a
// provider. Regions outside the registry are found through a Loader.
type Loader interface {
	Load(ctx context.Context, location string) (Provider, error)
}

// DirLoader reads YAML bundles from a file system.
type DirLoader struct {
	FS fs.FS
}

func (l DirLoader) Load(_ context.Context, location string) (Provider, error) {
	data, err := fs.ReadFile(l.FS, location)
	if err != nil {
		return nil, err
	}
	b, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", location, err)
	}
	return Static(b), nil
}

// Candidates lists the locations tried for a region, in order: the full
// name slug then the abbreviation, each as "<slug>.yaml" and
// "<slug>/index.yaml".
func Candidates(name string) []string {
	raw := strings.TrimSpace(name)
	if raw == "" {
		return nil
	}
	full := raw
	for _, s := range states {
		if s.Abbr == strings.ToUpper(raw) {
			full = s.Name
			break
		}
	}

	slugs := []string{Slug(full)}
	if abbr := strings.ToLower(Abbreviation(full)); abbr != "" {
		slugs = append(slugs, abbr)
	}

	var out []string
	for _, s := range slugs {
		out = append(out, s+".yaml", path.Join(s, "index.yaml"))
	}
	return out
}

// Registry maps canonical region names to providers and falls back to a
// Loader for anything not registered.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	loader    Loader
	logger    *zap.Logger
}

func NewRegistry(loader Loader, logger *zap.Logger) *Registry {
	return &Registry{
		providers: make(map[string]Provider),
		loader:    loader,
		logger:    logger.Named("region"),
	}
}

// Default returns a registry holding the built-in bundles. When extraDir
// is set, regions missing from the registry are probed there.
func Default(extraDir fs.FS, logger *zap.Logger) (*Registry, error) {
	var loader Loader
	if extraDir != nil {
		loader = DirLoader{FS: extraDir}
	}
	r := NewRegistry(loader, logger)

	entries, err := fs.ReadDir(builtin, "bundles")
	if err != nil {
		return nil, fmt.Errorf("region: list built-in bundles: %w", err)
	}
	for _, e := range entries {
		data, err := fs.ReadFile(builtin, path.Join("bundles", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("region: read %s: %w", e.Name(), err)
		}
		b, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("region: %s: %w", e.Name(), err)
		}
		if missing := b.MissingTopics(); len(missing) > 0 {
			r.logger.Warn("region: bundle topics without answers",
				zap.String("region", b.Name), zap.Strings("topics", missing))
		}
		r.Register(b.Name, Static(b))
	}
	return r, nil
}

// Register installs p under the canonical name, replacing any previous one.
func (r *Registry) Register(name string, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[strings.ToLower(strings.TrimSpace(name))] = p
}

// Names lists registered region keys (lowercased names), sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.providers))
	for n := range r.providers {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Resolve returns the bundle for a canonical region name. The boolean is
// false when no provider succeeded; callers then use the fallback menu.
func (r *Registry) Resolve(ctx context.Context, name string) (*Bundle, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, false
	}

	r.mu.RLock()
	p, ok := r.providers[key]
	r.mu.RUnlock()
	if ok {
		b, err := p.Bundle()
		if err == nil && b != nil {
			return b, true
		}
		r.logger.Warn("region: registered provider failed", zap.String("region", name), zap.Error(err))
	}

	if r.loader == nil {
		r.logger.Info("region: no bundle", zap.String("region", name))
		return nil, false
	}

	candidates := Candidates(name)
	var lastErr error
	for _, loc := range candidates {
		p, err := r.loader.Load(ctx, loc)
		if err != nil {
			lastErr = err
			if !errors.Is(err, fs.ErrNotExist) {
				r.logger.Debug("region: candidate failed", zap.String("location", loc), zap.Error(err))
			}
			continue
		}
		b, err := p.Bundle()
		if err != nil || b == nil {
			lastErr = err
			continue
		}
		r.logger.Info("region: loaded bundle", zap.String("region", name), zap.String("location", loc))
		return b, true
	}

	r.logger.Info("region: no bundle",
		zap.String("region", name), zap.Strings("tried", candidates), zap.Error(lastErr))
	return nil, false
}
