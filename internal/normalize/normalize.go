package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"regexp"
	"strings"
)

// ErrEmptyContent is returned when input is empty or normalizes to nothing;
// callers skip such candidates instead of acting on them.
var ErrEmptyContent = errors.New("content is empty after normalization")

var (
	// Symbol and pictograph blocks: emoji, dingbats, arrows, variation
	// selectors and the supplemental symbol planes.
	pictographExpr = regexp.MustCompile(`[\x{1F000}-\x{1FAFF}\x{2190}-\x{21FF}\x{2600}-\x{27BF}\x{2B00}-\x{2BFF}\x{FE00}-\x{FE0F}]`)
	punctExpr      = regexp.MustCompile(`[^\p{L}\p{N}_\s\p{Zs}]`)
	spaceExpr      = regexp.MustCompile(`[\s\p{Zs}]+`)
)

// Normalize canonicalizes raw content and derives its fingerprint:
// lowercase, strip pictographs, strip remaining punctuation, collapse
// whitespace, trim. The fingerprint is the lowercase hex sha256 of the
// normalized UTF-8 bytes. Pure and deterministic.
func Normalize(text string) (normalized string, fingerprint string, err error) {
	if strings.TrimSpace(text) == "" {
		return "", "", ErrEmptyContent
	}

	s := strings.ToLower(text)
	s = pictographExpr.ReplaceAllString(s, "")
	s = punctExpr.ReplaceAllString(s, "")
	s = spaceExpr.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	if s == "" {
		return "", "", ErrEmptyContent
	}

	sum := sha256.Sum256([]byte(s))
	return s, hex.EncodeToString(sum[:]), nil
}
