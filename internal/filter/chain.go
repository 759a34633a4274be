package filter

import (
	"regexp"
	"strings"

	"FeedEngager/internal/dedup"
	"FeedEngager/internal/domain"
)

// Organizational pages advertise follower counts in their bio line, e.g.
// "12,340 followers".
var companyBioExpr = regexp.MustCompile(`(?i)\b[\d][\d,.]*\s*\+?\s*followers\b`)

// Predicate is one independent skip rule. It receives the candidate, its
// content fingerprint and the run config, and reports a reason when the
// candidate should be passed over.
type Predicate struct {
	Name     string
	Evaluate func(c domain.Candidate, fingerprint string, cfg domain.RunConfig) (domain.SkipReason, bool)
}

// Chain evaluates predicates in order and short-circuits on the first
// match, so every skip has exactly one explanation and later predicates are
// never evaluated once one fires.
type Chain struct {
	predicates []Predicate
}

// New builds the canonical chain, cheapest and most decisive rules first:
// friend-activity, company-author, promoted, age, identity-duplicate,
// blacklist, author-recency, content-duplicate.
func New(store *dedup.Store) *Chain {
	return NewWithPredicates(defaultPredicates(store))
}

// NewWithPredicates builds a chain from an explicit rule list.
func NewWithPredicates(predicates []Predicate) *Chain {
	return &Chain{predicates: predicates}
}

// ShouldSkip returns the first matching skip reason, if any.
func (c *Chain) ShouldSkip(candidate domain.Candidate, fingerprint string, cfg domain.RunConfig) (domain.SkipReason, bool) {
	for _, predicate := range c.predicates {
		if reason, skip := predicate.Evaluate(candidate, fingerprint, cfg); skip {
			return reason, true
		}
	}
	return "", false
}

func defaultPredicates(store *dedup.Store) []Predicate {
	return []Predicate{
		{Name: "friend-activity", Evaluate: friendActivity},
		{Name: "company-author", Evaluate: companyAuthor},
		{Name: "promoted", Evaluate: promoted},
		{Name: "age", Evaluate: age},
		{Name: "identity-duplicate", Evaluate: identityDuplicate(store)},
		{Name: "blacklist", Evaluate: blacklist},
		{Name: "author-recency", Evaluate: authorRecency(store)},
		{Name: "content-duplicate", Evaluate: contentDuplicate(store)},
	}
}

func friendActivity(c domain.Candidate, _ string, cfg domain.RunConfig) (domain.SkipReason, bool) {
	if cfg.SkipFriendActivity && c.FriendActivity {
		return domain.SkipFriendActivity, true
	}
	return "", false
}

func companyAuthor(c domain.Candidate, _ string, cfg domain.RunConfig) (domain.SkipReason, bool) {
	if cfg.SkipCompanyAuthors && companyBioExpr.MatchString(c.AuthorBio) {
		return domain.SkipCompanyAuthor, true
	}
	return "", false
}

func promoted(c domain.Candidate, _ string, cfg domain.RunConfig) (domain.SkipReason, bool) {
	if cfg.SkipPromoted && c.Promoted {
		return domain.SkipPromoted, true
	}
	return "", false
}

// age fails closed: when the filter is enabled, a candidate whose age could
// not be extracted is treated as too old, not as eligible.
func age(c domain.Candidate, _ string, cfg domain.RunConfig) (domain.SkipReason, bool) {
	if cfg.MaxAgeHours <= 0 {
		return "", false
	}
	if c.AgeHours == nil || *c.AgeHours > cfg.MaxAgeHours {
		return domain.SkipTooOld, true
	}
	return "", false
}

func identityDuplicate(store *dedup.Store) func(domain.Candidate, string, domain.RunConfig) (domain.SkipReason, bool) {
	return func(c domain.Candidate, _ string, _ domain.RunConfig) (domain.SkipReason, bool) {
		for _, alias := range c.Aliases {
			if store.HasItem(alias) {
				return domain.SkipAlreadySeen, true
			}
		}
		return "", false
	}
}

func blacklist(c domain.Candidate, _ string, cfg domain.RunConfig) (domain.SkipReason, bool) {
	name := strings.ToLower(c.AuthorName)
	for _, term := range cfg.Blacklist {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" && strings.Contains(name, term) {
			return domain.SkipBlacklisted, true
		}
	}
	return "", false
}

func authorRecency(store *dedup.Store) func(domain.Candidate, string, domain.RunConfig) (domain.SkipReason, bool) {
	return func(c domain.Candidate, _ string, cfg domain.RunConfig) (domain.SkipReason, bool) {
		if store.HasAuthorRecently(c.AuthorKey, cfg.AuthorRecencyWindow) {
			return domain.SkipAuthorRecent, true
		}
		return "", false
	}
}

func contentDuplicate(store *dedup.Store) func(domain.Candidate, string, domain.RunConfig) (domain.SkipReason, bool) {
	return func(_ domain.Candidate, fingerprint string, _ domain.RunConfig) (domain.SkipReason, bool) {
		if fingerprint != "" && store.HasFingerprint(fingerprint) {
			return domain.SkipDuplicateContent, true
		}
		return "", false
	}
}
