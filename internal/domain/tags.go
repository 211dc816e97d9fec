package domain

import (
	"fmt"
	"sort"
	"strings"
)

const maxTagLen = 50

// TagSet is a case-insensitive, deduplicated set of tag labels. Tags are
// stored lower-cased; comma serialization happens only at the storage and
// display edges.
type TagSet map[string]struct{}

// NewTagSet normalizes and validates the given labels into a set. Empty
// labels are dropped.
func NewTagSet(names ...string) (TagSet, error) {
	s := make(TagSet, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if len(name) > maxTagLen {
			return nil, fmt.Errorf("%w: tag %q exceeds %d characters", ErrValidation, name, maxTagLen)
		}
		if !tagPattern.MatchString(name) {
			return nil, fmt.Errorf("%w: tag %q contains invalid characters", ErrValidation, name)
		}
		s[name] = struct{}{}
	}
	return s, nil
}

// ParseTags builds a TagSet from a comma-joined storage string.
func ParseTags(joined string) (TagSet, error) {
	if strings.TrimSpace(joined) == "" {
		return TagSet{}, nil
	}
	return NewTagSet(strings.Split(joined, ",")...)
}

// Has reports whether the set contains the label (case-insensitive).
func (s TagSet) Has(name string) bool {
	_, ok := s[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// HasAny reports whether the set intersects the given labels.
func (s TagSet) HasAny(names []string) bool {
	for _, name := range names {
		if s.Has(name) {
			return true
		}
	}
	return false
}

// Slice returns the tags sorted ascending.
func (s TagSet) Slice() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// String renders the comma-joined storage form.
func (s TagSet) String() string {
	return strings.Join(s.Slice(), ",")
}
