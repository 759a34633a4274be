package domain

// Candidate is one unit of feed content eligible for engagement.
// Produced by a candidate source; immutable once read.
type Candidate struct {
	// Aliases lists every identifier that addresses this item. Aggregated
	// feed entries carry several; Aliases is never empty for a valid item.
	Aliases []string

	Content    string
	AuthorKey  string
	AuthorName string
	AuthorBio  string

	// AgeHours is nil when the item age could not be extracted. The age
	// filter treats unknown age as too old.
	AgeHours *float64

	Promoted bool

	// FriendActivity marks reshares of someone else's activity rather
	// than original content.
	FriendActivity bool

	// ThreadContext carries adjacent content (e.g. the parent post) used
	// to enrich generation when the run config asks for it.
	ThreadContext string
}

// CanonicalAlias returns the deterministic primary identifier for logging
// and progress events: the lexicographically smallest alias.
func (c Candidate) CanonicalAlias() string {
	if len(c.Aliases) == 0 {
		return ""
	}
	smallest := c.Aliases[0]
	for _, alias := range c.Aliases[1:] {
		if alias < smallest {
			smallest = alias
		}
	}
	return smallest
}

// SkipReason explains why the filter chain passed over a candidate.
type SkipReason string

const (
	SkipFriendActivity   SkipReason = "friend_activity"
	SkipCompanyAuthor    SkipReason = "company_author"
	SkipPromoted         SkipReason = "promoted"
	SkipTooOld           SkipReason = "too_old"
	SkipAlreadySeen      SkipReason = "already_seen"
	SkipBlacklisted      SkipReason = "blacklisted"
	SkipAuthorRecent     SkipReason = "author_recent"
	SkipDuplicateContent SkipReason = "duplicate_content"
)
