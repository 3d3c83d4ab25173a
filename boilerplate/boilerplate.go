// Package boilerplate detects lines that recur verbatim across many
// distinct pages of one crawl seed: navigation, cookie banners, footers.
// Counting is restricted to distinct page texts, so a page mirrored many
// times into the sample contributes its lines only once.
package boilerplate

// thresholdFloor keeps small samples from suppressing anything spurious: a
// line must recur on more than this many distinct pages before it can ever
// be treated as boilerplate.
const thresholdFloor = 10

// Threshold returns the suppression threshold for a sample with the given
// number of distinct pages: max(10, uniquePages/100).
func Threshold(uniquePages int) int {
	if t := uniquePages / 100; t > thresholdFloor {
		return t
	}
	return thresholdFloor
}

// FrequencyTable counts stripped-line occurrences across the distinct pages
// of one sample. It is owned by a single Count call and is not safe for
// concurrent use.
type FrequencyTable struct {
	counts map[string]int
}

// NewFrequencyTable creates an empty table.
func NewFrequencyTable() *FrequencyTable {
	return &FrequencyTable{counts: make(map[string]int)}
}

// Add increments the count for a stripped line.
func (t *FrequencyTable) Add(line string) { t.counts[line]++ }

// Count returns the recorded count for a stripped line.
func (t *FrequencyTable) Count(line string) int { return t.counts[line] }

// Len returns the number of distinct lines in the table.
func (t *FrequencyTable) Len() int { return len(t.counts) }

// Each calls fn for every line/count pair. Iteration order is unspecified.
func (t *FrequencyTable) Each(fn func(line string, count int)) {
	for line, count := range t.counts {
		fn(line, count)
	}
}

// merge folds other's counts into t. Safe because shards partition pages by
// text, so per-page dedup never spans two tables.
func (t *FrequencyTable) merge(other *FrequencyTable) {
	for line, count := range other.counts {
		t.counts[line] += count
	}
}
