package source

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"FeedEngager/internal/domain"
	"FeedEngager/internal/ports"
)

// Spec describes where one group's candidates come from: a mode name
// resolved through the registry plus mode-specific options.
type Spec struct {
	GroupID string
	Mode    string
	Options map[string]string
}

// Builder constructs a candidate source for a spec. Implementations exist
// per mode (feed snapshot scan, targeted list, manual-approval queue).
type Builder interface {
	Name() string
	Build(ctx context.Context, spec Spec) (ports.CandidateSource, error)
}

// Registry maps mode names to their builders.
type Registry struct {
	builders map[string]Builder
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{builders: map[string]Builder{}}
}

// Register adds or replaces a builder.
func (r *Registry) Register(builder Builder) {
	if r.builders == nil {
		r.builders = map[string]Builder{}
	}
	r.builders[builder.Name()] = builder
}

// Resolve returns a builder by mode name or an error if it is absent.
func (r *Registry) Resolve(mode string) (Builder, error) {
	if builder, ok := r.builders[mode]; ok {
		return builder, nil
	}
	return nil, fmt.Errorf("source mode %s is not registered", mode)
}

// Resolver turns group identifiers into candidate sources, caching the
// expensive resolution per group for the lifetime of a session. Cache
// entries are dropped only by explicit invalidation, never by TTL.
type Resolver struct {
	registry *Registry
	specs    map[string]Spec
	logger   *slog.Logger

	mu    sync.Mutex
	cache map[string]ports.CandidateSource
}

// NewResolver wires the registry with config-defined group specs.
func NewResolver(registry *Registry, specs []Spec, logger *slog.Logger) *Resolver {
	byGroup := make(map[string]Spec, len(specs))
	for _, spec := range specs {
		byGroup[spec.GroupID] = spec
	}
	return &Resolver{
		registry: registry,
		specs:    byGroup,
		logger:   logger,
		cache:    map[string]ports.CandidateSource{},
	}
}

// Resolve returns the candidate source for a group, building and caching
// it on first use.
func (r *Resolver) Resolve(ctx context.Context, groupID string) (ports.CandidateSource, error) {
	r.mu.Lock()
	if cached, ok := r.cache[groupID]; ok {
		r.mu.Unlock()
		return cached, nil
	}
	r.mu.Unlock()

	spec, ok := r.specs[groupID]
	if !ok {
		return nil, fmt.Errorf("group %s is not configured", groupID)
	}

	builder, err := r.registry.Resolve(spec.Mode)
	if err != nil {
		return nil, fmt.Errorf("group %s: %w", groupID, err)
	}

	built, err := builder.Build(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("build source for group %s: %w", groupID, err)
	}

	r.mu.Lock()
	r.cache[groupID] = built
	r.mu.Unlock()

	r.debug("candidate source resolved", "group", groupID, "mode", spec.Mode)
	return built, nil
}

// Invalidate drops the cached source for a group after its definition
// mutates.
func (r *Resolver) Invalidate(groupID string) {
	r.mu.Lock()
	delete(r.cache, groupID)
	r.mu.Unlock()
}

func (r *Resolver) debug(msg string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}

// StaticSource serves a fixed candidate list; it backs targeted-list mode
// where the operator supplies explicit items to engage with.
type StaticSource struct {
	candidates []domain.Candidate
}

var _ ports.CandidateSource = (*StaticSource)(nil)

// NewStaticSource copies the given list.
func NewStaticSource(candidates []domain.Candidate) *StaticSource {
	copied := make([]domain.Candidate, len(candidates))
	copy(copied, candidates)
	return &StaticSource{candidates: copied}
}

// List returns the configured candidates in order.
func (s *StaticSource) List(ctx context.Context) ([]domain.Candidate, error) {
	out := make([]domain.Candidate, len(s.candidates))
	copy(out, s.candidates)
	return out, nil
}
