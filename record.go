package seedcorpus

// PageRecord is one crawled page read from a seed archive. Only the fields
// the pipeline interprets are carried; the remaining crawl metadata (fetch
// status, WARC offsets, HTML annotations) is validated at decode time and
// dropped, since the metadata projection retains none of it.
type PageRecord struct {
	URL              string
	ContentLanguages string
	SeedID           int64
	Text             string
}

// Validate returns an error if the record contains invalid fields. An empty
// text is valid: pages with no extractable content still occur in archives.
func (r *PageRecord) Validate() error {
	if r.URL == "" {
		return Errorf(ERECORD, "page record URL required")
	}
	return nil
}

// Meta returns the metadata projection retained for the record.
func (r *PageRecord) Meta() RecordMeta {
	return RecordMeta{
		URL:              r.URL,
		ContentLanguages: r.ContentLanguages,
		SeedID:           r.SeedID,
	}
}

// RecordMeta is the minimal metadata kept alongside every processed page.
// The field order and names are the artifact wire format; downstream
// tooling keys on them.
type RecordMeta struct {
	URL              string `json:"url"`
	ContentLanguages string `json:"content_languages"`
	SeedID           int64  `json:"seed_id"`
}

// ProcessedRecord is one boilerplate-stripped page ready for the corpus
// artifact.
type ProcessedRecord struct {
	Meta RecordMeta `json:"meta"`
	Text string     `json:"text"`
}

// SkipSet holds the stripped line texts a seed's pages should suppress. It
// is derived once per seed by the boilerplate detector and only read
// afterwards.
type SkipSet map[string]bool

// Skip reports whether a stripped line should be suppressed.
func (s SkipSet) Skip(line string) bool { return s[line] }

// Len returns the number of suppressed lines.
func (s SkipSet) Len() int { return len(s) }
