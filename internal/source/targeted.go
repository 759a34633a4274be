package source

import (
	"context"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"FeedEngager/internal/domain"
	"FeedEngager/internal/ports"
)

// targetedItem is the YAML shape of one operator-supplied candidate.
type targetedItem struct {
	IDs            []string `yaml:"ids"`
	Content        string   `yaml:"content"`
	AuthorKey      string   `yaml:"authorKey"`
	AuthorName     string   `yaml:"authorName"`
	AuthorBio      string   `yaml:"authorBio"`
	AgeHours       *float64 `yaml:"ageHours"`
	Promoted       bool     `yaml:"promoted"`
	FriendActivity bool     `yaml:"friendActivity"`
	ThreadContext  string   `yaml:"threadContext"`
}

// TargetedBuilder builds static sources from an operator-maintained YAML
// list. The group options must carry a "file" path.
type TargetedBuilder struct{}

var _ Builder = (*TargetedBuilder)(nil)

// NewTargetedBuilder constructs the builder for targeted-list mode.
func NewTargetedBuilder() *TargetedBuilder {
	return &TargetedBuilder{}
}

// Name identifies the mode in group configuration.
func (b *TargetedBuilder) Name() string { return "targeted" }

// Build loads the YAML item list and wraps it in a static source.
func (b *TargetedBuilder) Build(ctx context.Context, spec Spec) (ports.CandidateSource, error) {
	path, ok := spec.Options["file"]
	if !ok || path == "" {
		return nil, fmt.Errorf("targeted mode for group %s requires a file option", spec.GroupID)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read targeted list %s: %w", path, err)
	}

	var items []targetedItem
	if err := yaml.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("parse targeted list %s: %w", path, err)
	}

	candidates := make([]domain.Candidate, 0, len(items))
	for i, item := range items {
		if len(item.IDs) == 0 {
			return nil, fmt.Errorf("targeted list %s: item %d has no ids", path, i)
		}
		if item.Content == "" {
			return nil, fmt.Errorf("targeted list %s: item %d has no content", path, i)
		}
		aliases := append([]string(nil), item.IDs...)
		sort.Strings(aliases)

		authorKey := item.AuthorKey
		if authorKey == "" {
			authorKey = item.AuthorName
		}

		candidates = append(candidates, domain.Candidate{
			Aliases:        aliases,
			Content:        item.Content,
			AuthorKey:      authorKey,
			AuthorName:     item.AuthorName,
			AuthorBio:      item.AuthorBio,
			AgeHours:       item.AgeHours,
			Promoted:       item.Promoted,
			FriendActivity: item.FriendActivity,
			ThreadContext:  item.ThreadContext,
		})
	}

	return NewStaticSource(candidates), nil
}
