package schema

// DefaultSeedDescription returns the declarative description of pseudo-crawl
// seed records, matching the metadata the crawl tooling ships with every
// seed's divided shards.
func DefaultSeedDescription() map[string]any {
	value := func(dtype string) map[string]any {
		return map[string]any{"dtype": dtype, "id": nil, "_type": "Value"}
	}
	return map[string]any{
		"HtmlPreprocessor_error":         value("int64"),
		"HtmlPreprocessor_error_comment": value("string"),
		"content_languages":              value("string"),
		"content_mime_detected":          value("string"),
		"depth":                          value("int16"),
		"download_exception":             value("string"),
		"external_urls":                  []any{value("string")},
		"fetch_redirect":                 value("string"),
		"fetch_status":                   value("int32"),
		"fetch_time":                     value("timestamp[ns]"),
		"html_error":                     value("string"),
		"html_footer":                    []any{value("string")},
		"html_head":                      []any{value("string")},
		"html_str":                       value("string"),
		"html_title":                     []any{value("string")},
		"metadata_html": []any{map[string]any{
			"char_end_idx":   value("int64"),
			"char_start_idx": value("int64"),
			"html_attrs": map[string]any{
				"attrs":  []any{value("string")},
				"values": []any{value("string")},
			},
			"key":                value("string"),
			"relative_end_pos":   value("int64"),
			"relative_start_pos": value("int64"),
			"type":               value("string"),
			"value":              value("string"),
		}},
		"seed_id":                    value("int32"),
		"text":                       value("string"),
		"url":                        value("string"),
		"url_host_name":              value("string"),
		"url_host_registered_domain": value("string"),
		"url_host_tld":               value("string"),
		"url_surtkey":                value("string"),
		"warc_filename":              value("string"),
		"warc_record_length":         value("int32"),
		"warc_record_offset":         value("int32"),
	}
}

// DefaultSeed resolves DefaultSeedDescription into a schema tree.
func DefaultSeed() (*Node, error) {
	return Resolve(DefaultSeedDescription())
}
