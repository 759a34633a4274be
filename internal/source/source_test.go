package source

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FeedEngager/internal/domain"
	"FeedEngager/internal/ports"
)

type stubBuilder struct {
	builds int
}

func (b *stubBuilder) Name() string { return "static" }

func (b *stubBuilder) Build(ctx context.Context, spec Spec) (ports.CandidateSource, error) {
	b.builds++
	return NewStaticSource(nil), nil
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.Register(&stubBuilder{})

	_, err := registry.Resolve("static")
	require.NoError(t, err)

	_, err = registry.Resolve("unknown")
	require.Error(t, err)
}

func TestResolverCachesUntilInvalidated(t *testing.T) {
	t.Parallel()

	builder := &stubBuilder{}
	registry := NewRegistry()
	registry.Register(builder)

	resolver := NewResolver(registry, []Spec{{GroupID: "g1", Mode: "static"}}, nil)
	ctx := context.Background()

	first, err := resolver.Resolve(ctx, "g1")
	require.NoError(t, err)
	second, err := resolver.Resolve(ctx, "g1")
	require.NoError(t, err)

	assert.Same(t, first.(*StaticSource), second.(*StaticSource))
	assert.Equal(t, 1, builder.builds)

	resolver.Invalidate("g1")
	_, err = resolver.Resolve(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 2, builder.builds)

	_, err = resolver.Resolve(ctx, "unconfigured")
	require.Error(t, err)
}

func TestStaticSourceReturnsCopies(t *testing.T) {
	t.Parallel()

	original := []domain.Candidate{{Aliases: []string{"a"}, Content: "post", AuthorKey: "k"}}
	src := NewStaticSource(original)

	listed, err := src.List(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1)

	listed[0].Content = "mutated"
	again, err := src.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "post", again[0].Content)
}
