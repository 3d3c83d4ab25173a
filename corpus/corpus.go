// Package corpus turns boilerplate-stripped pages into a deduplicated JSONL
// corpus artifact.
package corpus

import (
	"strings"

	"github.com/fwojciec/seedcorpus"
)

// FilterLines splits text on line boundaries, strips each line, and
// partitions the lines into kept and skipped according to skip, preserving
// relative order within each partition. Both returned texts are joined with
// newlines and stripped of leading and trailing whitespace.
func FilterLines(text string, skip seedcorpus.SkipSet) (kept, skipped string) {
	lines := strings.Split(text, "\n")
	keep := make([]string, 0, len(lines))
	var drop []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if skip.Skip(line) {
			drop = append(drop, line)
		} else {
			keep = append(keep, line)
		}
	}
	return strings.TrimSpace(strings.Join(keep, "\n")), strings.TrimSpace(strings.Join(drop, "\n"))
}

// Process strips a page's boilerplate lines and projects its metadata.
// Suppression is decided per exact stripped line, independent of position:
// a line matching the skip set is removed even where it is legitimate
// content, a trade-off favoring recall of boilerplate removal.
func Process(page *seedcorpus.PageRecord, skip seedcorpus.SkipSet) *seedcorpus.ProcessedRecord {
	text, _ := FilterLines(page.Text, skip)
	return &seedcorpus.ProcessedRecord{Meta: page.Meta(), Text: text}
}
