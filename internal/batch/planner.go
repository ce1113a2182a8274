// Package batch splits a message-identifier listing into bounded work units
// and compacts numeric identifier runs into range tokens, keeping bulk fetch
// requests small.
package batch

import (
	"fmt"
	"strconv"
	"strings"
)

// Separator joins compacted tokens; RangeSeparator joins the two ends of a
// contiguous run. Together they form the seq-set syntax the mail transport
// understands natively ("1:3,7,9:10").
const (
	Separator      = ","
	RangeSeparator = ":"
)

// Plan splits ids into ordered, deduplicated batches of at most maxSize
// identifiers; the final batch may be smaller. maxSize <= 0 yields a single
// batch containing everything. An empty listing yields no batches.
func Plan(ids []string, maxSize int) [][]string {
	deduped := dedupe(ids)
	if len(deduped) == 0 {
		return nil
	}
	if maxSize <= 0 {
		return [][]string{deduped}
	}

	var batches [][]string
	for start := 0; start < len(deduped); start += maxSize {
		end := start + maxSize
		if end > len(deduped) {
			end = len(deduped)
		}
		batches = append(batches, deduped[start:end])
	}
	return batches
}

// Compact renders a batch as a compacted token string: consecutive
// integer-valued identifiers merge into "start:end" ranges, everything else
// stays a singleton token. The identifier set is unchanged, only the
// notation shrinks.
func Compact(ids []string) string {
	var tokens []string

	flush := func(start, end uint64, run int) {
		switch {
		case run == 1:
			tokens = append(tokens, strconv.FormatUint(start, 10))
		case run > 1:
			tokens = append(tokens, strconv.FormatUint(start, 10)+RangeSeparator+strconv.FormatUint(end, 10))
		}
	}

	var start, prev uint64
	run := 0
	for _, id := range ids {
		n, err := strconv.ParseUint(id, 10, 64)
		if err != nil {
			flush(start, prev, run)
			run = 0
			tokens = append(tokens, id)
			continue
		}
		if run > 0 && n == prev+1 {
			prev = n
			run++
			continue
		}
		flush(start, prev, run)
		start, prev, run = n, n, 1
	}
	flush(start, prev, run)

	return strings.Join(tokens, Separator)
}

// Expand reverses Compact, recovering the identifier sequence from its
// compacted notation.
func Expand(compacted string) ([]string, error) {
	if compacted == "" {
		return nil, nil
	}

	var ids []string
	for _, token := range strings.Split(compacted, Separator) {
		bounds := strings.SplitN(token, RangeSeparator, 2)
		if len(bounds) == 1 {
			ids = append(ids, token)
			continue
		}
		start, err := strconv.ParseUint(bounds[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid range start in token %q: %w", token, err)
		}
		end, err := strconv.ParseUint(bounds[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid range end in token %q: %w", token, err)
		}
		if end < start {
			return nil, fmt.Errorf("inverted range in token %q", token)
		}
		for n := start; n <= end; n++ {
			ids = append(ids, strconv.FormatUint(n, 10))
		}
	}
	return ids, nil
}

// dedupe preserves first-occurrence order while dropping repeated and empty
// identifiers.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	var out []string
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
