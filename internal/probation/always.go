package probation

import (
	"fmt"
	"strconv"
	"strings"
)

// AlwaysModerateSet holds user IDs that are filtered on every message,
// regardless of how many messages they have sent. Built once at startup and
// never mutated afterwards.
type AlwaysModerateSet map[int64]struct{}

// NewAlwaysModerateSet builds the set from a list of user IDs.
func NewAlwaysModerateSet(ids []int64) AlwaysModerateSet {
	set := make(AlwaysModerateSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Contains reports whether id is always moderated.
func (s AlwaysModerateSet) Contains(id int64) bool {
	_, ok := s[id]
	return ok
}

// ParseIDList parses a comma-separated list of numeric user IDs, as supplied
// via the ALWAYS_MODERATE_IDS environment variable. Empty elements are
// skipped; a non-numeric element is an error.
func ParseIDList(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("probation: invalid user id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
