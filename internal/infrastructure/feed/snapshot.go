package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"FeedEngager/internal/domain"
	"FeedEngager/internal/ports"
	"FeedEngager/internal/source"
)

// SnapshotScanner turns a rendered feed snapshot (the export produced by
// the extraction layer) into candidates. Items appear in document order,
// matching the order they were seen on the feed.
type SnapshotScanner struct {
	client *http.Client
	logger *slog.Logger
	url    string
}

var _ ports.CandidateSource = (*SnapshotScanner)(nil)

// NewSnapshotScanner wires an HTTP client for the snapshot endpoint.
func NewSnapshotScanner(client *http.Client, logger *slog.Logger, url string) *SnapshotScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &SnapshotScanner{client: client, logger: logger, url: url}
}

// List fetches and parses the snapshot. Re-invocation rescans from scratch.
func (s *SnapshotScanner) List(ctx context.Context) ([]domain.Candidate, error) {
	doc, err := s.fetchDocument(ctx)
	if err != nil {
		return nil, err
	}

	var candidates []domain.Candidate
	doc.Find("div.feed-item").Each(func(i int, sel *goquery.Selection) {
		candidate, parseErr := parseItem(sel)
		if parseErr != nil {
			s.debug("skipping malformed feed item", "index", i, "error", parseErr)
			return
		}
		candidates = append(candidates, candidate)
	})

	s.debug("snapshot scanned", "candidates", len(candidates))
	return candidates, nil
}

func (s *SnapshotScanner) fetchDocument(ctx context.Context) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request snapshot: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("snapshot endpoint returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}

	return doc, nil
}

// parseItem extracts one candidate from its snapshot element. A missing
// identifier or empty content is an error; an unparsable age is not: the
// candidate keeps a nil age and the age filter decides.
func parseItem(sel *goquery.Selection) (domain.Candidate, error) {
	rawIDs := strings.TrimSpace(sel.AttrOr("data-ids", ""))
	if rawIDs == "" {
		return domain.Candidate{}, fmt.Errorf("feed item has no identifiers")
	}

	var aliases []string
	for _, id := range strings.Split(rawIDs, ",") {
		if id = strings.TrimSpace(id); id != "" {
			aliases = append(aliases, id)
		}
	}
	if len(aliases) == 0 {
		return domain.Candidate{}, fmt.Errorf("feed item has no identifiers")
	}
	sort.Strings(aliases)

	content := strings.TrimSpace(sel.Find(".item-content").First().Text())
	if content == "" {
		return domain.Candidate{}, fmt.Errorf("feed item %s has no content", aliases[0])
	}

	candidate := domain.Candidate{
		Aliases:        aliases,
		Content:        content,
		AuthorKey:      strings.TrimSpace(sel.AttrOr("data-author", "")),
		AuthorName:     strings.TrimSpace(sel.Find(".author-name").First().Text()),
		AuthorBio:      strings.TrimSpace(sel.Find(".author-bio").First().Text()),
		Promoted:       sel.AttrOr("data-promoted", "") == "true",
		FriendActivity: sel.AttrOr("data-friend-activity", "") == "true",
		ThreadContext:  strings.TrimSpace(sel.Find(".thread-context").First().Text()),
	}

	if raw := strings.TrimSpace(sel.AttrOr("data-age-hours", "")); raw != "" {
		if age, err := strconv.ParseFloat(raw, 64); err == nil && age >= 0 {
			candidate.AgeHours = &age
		}
	}

	if candidate.AuthorKey == "" {
		candidate.AuthorKey = candidate.AuthorName
	}

	return candidate, nil
}

func (s *SnapshotScanner) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

// Builder registers snapshot scanning as the "snapshot" source mode; the
// group spec supplies the endpoint via the "url" option.
type Builder struct {
	client *http.Client
	logger *slog.Logger
}

var _ source.Builder = (*Builder)(nil)

// NewBuilder wires the shared HTTP client for all snapshot sources.
func NewBuilder(client *http.Client, logger *slog.Logger) *Builder {
	return &Builder{client: client, logger: logger}
}

// Name identifies the mode inside the registry.
func (b *Builder) Name() string {
	return "snapshot"
}

// Build constructs a scanner for the group's snapshot URL.
func (b *Builder) Build(ctx context.Context, spec source.Spec) (ports.CandidateSource, error) {
	url := strings.TrimSpace(spec.Options["url"])
	if url == "" {
		return nil, fmt.Errorf("group %s: snapshot mode requires a url option", spec.GroupID)
	}
	return NewSnapshotScanner(b.client, b.logger, url), nil
}
