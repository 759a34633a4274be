package filter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FeedEngager/internal/dedup"
	"FeedEngager/internal/domain"
	"FeedEngager/internal/ports"
)

type memoryKV struct {
	data map[string]string
}

func (m *memoryKV) Ping(ctx context.Context) error { return nil }

func (m *memoryKV) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryKV) Set(ctx context.Context, key, value string) error {
	if _, exists := m.data[key]; !exists {
		m.data[key] = value
	}
	return nil
}

func (m *memoryKV) Delete(ctx context.Context, keys []string) error {
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *memoryKV) List(ctx context.Context, prefix string) ([]ports.Entry, error) {
	var entries []ports.Entry
	for key, value := range m.data {
		entries = append(entries, ports.Entry{Key: key, Value: value})
	}
	return entries, nil
}

func newStore(t *testing.T) *dedup.Store {
	t.Helper()
	store, err := dedup.New(context.Background(), &memoryKV{data: map[string]string{}}, nil)
	require.NoError(t, err)
	return store
}

func hours(v float64) *float64 { return &v }

func baseCandidate() domain.Candidate {
	return domain.Candidate{
		Aliases:    []string{"item-1"},
		Content:    "original thoughts on shipping software",
		AuthorKey:  "author-1",
		AuthorName: "Jordan Park",
		AuthorBio:  "Engineer. Opinions my own.",
		AgeHours:   hours(2),
	}
}

func TestFriendActivityPredicate(t *testing.T) {
	t.Parallel()

	chain := New(newStore(t))
	cfg := domain.RunConfig{SkipFriendActivity: true}

	c := baseCandidate()
	c.FriendActivity = true

	reason, skip := chain.ShouldSkip(c, "fp", cfg)
	assert.True(t, skip)
	assert.Equal(t, domain.SkipFriendActivity, reason)

	_, skip = chain.ShouldSkip(baseCandidate(), "fp", cfg)
	assert.False(t, skip)
}

func TestCompanyAuthorPredicate(t *testing.T) {
	t.Parallel()

	chain := New(newStore(t))
	cfg := domain.RunConfig{SkipCompanyAuthors: true}

	c := baseCandidate()
	c.AuthorBio = "Acme Corp · 12,340 followers"

	reason, skip := chain.ShouldSkip(c, "fp", cfg)
	assert.True(t, skip)
	assert.Equal(t, domain.SkipCompanyAuthor, reason)

	_, skip = chain.ShouldSkip(baseCandidate(), "fp", cfg)
	assert.False(t, skip)

	// Disabled toggle lets company pages through.
	_, skip = chain.ShouldSkip(c, "fp", domain.RunConfig{})
	assert.False(t, skip)
}

func TestPromotedPredicate(t *testing.T) {
	t.Parallel()

	chain := New(newStore(t))

	c := baseCandidate()
	c.Promoted = true

	reason, skip := chain.ShouldSkip(c, "fp", domain.RunConfig{SkipPromoted: true})
	assert.True(t, skip)
	assert.Equal(t, domain.SkipPromoted, reason)

	_, skip = chain.ShouldSkip(c, "fp", domain.RunConfig{})
	assert.False(t, skip)
}

func TestAgePredicateFailsClosedOnUnknownAge(t *testing.T) {
	t.Parallel()

	chain := New(newStore(t))
	cfg := domain.RunConfig{MaxAgeHours: 24}

	tooOld := baseCandidate()
	tooOld.AgeHours = hours(36)
	reason, skip := chain.ShouldSkip(tooOld, "fp", cfg)
	assert.True(t, skip)
	assert.Equal(t, domain.SkipTooOld, reason)

	unknown := baseCandidate()
	unknown.AgeHours = nil
	reason, skip = chain.ShouldSkip(unknown, "fp", cfg)
	assert.True(t, skip, "unknown age must be treated as too old")
	assert.Equal(t, domain.SkipTooOld, reason)

	// Filter disabled: unknown age is eligible.
	_, skip = chain.ShouldSkip(unknown, "fp", domain.RunConfig{})
	assert.False(t, skip)
}

func TestIdentityDuplicateMatchesAnyAlias(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	require.NoError(t, store.MarkItems(context.Background(), []string{"agg-9"}))
	chain := New(store)

	c := baseCandidate()
	c.Aliases = []string{"item-7", "agg-9"}

	reason, skip := chain.ShouldSkip(c, "fp", domain.RunConfig{})
	assert.True(t, skip)
	assert.Equal(t, domain.SkipAlreadySeen, reason)
}

func TestBlacklistPredicateIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	chain := New(newStore(t))
	cfg := domain.RunConfig{Blacklist: []string{"RECRUIT", "spam"}}

	c := baseCandidate()
	c.AuthorName = "Top Recruiter Agency"

	reason, skip := chain.ShouldSkip(c, "fp", cfg)
	assert.True(t, skip)
	assert.Equal(t, domain.SkipBlacklisted, reason)

	_, skip = chain.ShouldSkip(baseCandidate(), "fp", cfg)
	assert.False(t, skip)
}

func TestAuthorRecencyPredicate(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	require.NoError(t, store.MarkAuthor(context.Background(), "author-1"))
	chain := New(store)

	reason, skip := chain.ShouldSkip(baseCandidate(), "fp", domain.RunConfig{AuthorRecencyWindow: 24 * time.Hour})
	assert.True(t, skip)
	assert.Equal(t, domain.SkipAuthorRecent, reason)

	// Window of zero disables the check.
	_, skip = chain.ShouldSkip(baseCandidate(), "fp", domain.RunConfig{})
	assert.False(t, skip)
}

func TestContentDuplicatePredicate(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	require.NoError(t, store.MarkFingerprint(context.Background(), "deadbeef"))
	chain := New(store)

	reason, skip := chain.ShouldSkip(baseCandidate(), "deadbeef", domain.RunConfig{})
	assert.True(t, skip)
	assert.Equal(t, domain.SkipDuplicateContent, reason)

	_, skip = chain.ShouldSkip(baseCandidate(), "cafebabe", domain.RunConfig{})
	assert.False(t, skip)
}

func TestChainShortCircuitsOnFirstMatch(t *testing.T) {
	t.Parallel()

	calls := make([]int, 3)
	counting := func(i int, skip bool, reason domain.SkipReason) Predicate {
		return Predicate{
			Name: "counting",
			Evaluate: func(domain.Candidate, string, domain.RunConfig) (domain.SkipReason, bool) {
				calls[i]++
				return reason, skip
			},
		}
	}

	chain := NewWithPredicates([]Predicate{
		counting(0, false, ""),
		counting(1, true, domain.SkipPromoted),
		counting(2, false, ""),
	})

	reason, skip := chain.ShouldSkip(baseCandidate(), "fp", domain.RunConfig{})
	require.True(t, skip)
	assert.Equal(t, domain.SkipPromoted, reason)

	assert.Equal(t, 1, calls[0])
	assert.Equal(t, 1, calls[1])
	assert.Equal(t, 0, calls[2], "predicates after the first match must not run")
}
