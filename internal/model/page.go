package model

// PageResult holds everything the analyzer extracted from one fetched page.
// One PageResult exists per successfully dequeued URL; it is created by the
// analyzer, owned by the crawl session, and read-only afterwards.
//
// The JSON field names are part of the report format.
type PageResult struct {
	// URL is the fetched URL (post-normalization).
	URL string `json:"url"`

	// StatusCode is the HTTP response status. Zero when the fetch failed
	// at the transport level (see FetchError).
	StatusCode int `json:"statusCode"`

	// LoadTimeMillis is the wall-clock time the fetch took.
	LoadTimeMillis int64 `json:"loadTimeMillis"`

	// Title is the text of the first <title> element, trimmed.
	// Empty when absent; the scorer turns that into an issue.
	Title string `json:"title"`

	// MetaDescription is the content of <meta name="description">.
	MetaDescription string `json:"metaDescription"`

	// HeaderOutline is the ordered sequence of headings as they appear in
	// the document. Used to detect level skips.
	HeaderOutline []Heading `json:"headerOutline"`

	// Images lists every <img> with whether it carries alt text.
	Images []ImageRef `json:"images"`

	// InternalLinks are absolute URLs on the same registrable host as the
	// page, deduplicated.
	InternalLinks []string `json:"internalLinks"`

	// ExternalLinks are absolute URLs pointing off-site, deduplicated.
	ExternalLinks []string `json:"externalLinks"`

	// HasViewportMeta reports whether a mobile viewport declaration exists.
	HasViewportMeta bool `json:"hasViewportMeta"`

	// WordCount is the number of visible words (scripts/styles excluded).
	WordCount int `json:"wordCount"`

	// FetchError describes a transport-level failure, empty otherwise.
	// Pages with a FetchError have no markup-derived fields.
	FetchError string `json:"fetchError,omitempty"`

	// HTMLSizeBytes is the size of the raw document.
	HTMLSizeBytes int `json:"htmlSizeBytes"`

	// Language is the ISO 639-3 code detected from the page text, or empty
	// when detection was not possible.
	Language string `json:"language,omitempty"`

	// HeadingCounts maps heading level (1-6) to occurrence count.
	HeadingCounts map[int]int `json:"headingCounts,omitempty"`

	// ParagraphCount and ListCount describe content structure.
	ParagraphCount int `json:"paragraphCount"`
	ListCount      int `json:"listCount"`

	// Readability summarizes text complexity, nil for empty pages.
	Readability *Readability `json:"readability,omitempty"`

	// TopKeywords are the most frequent non-stop-words with their density.
	TopKeywords []Keyword `json:"topKeywords,omitempty"`
}

// Heading is one entry of the header outline.
type Heading struct {
	// Level is 1 for H1 through 6 for H6.
	Level int `json:"level"`

	// Text is the heading's trimmed text content.
	Text string `json:"text"`
}

// ImageRef records an image reference and its alt-text presence.
type ImageRef struct {
	// Src is the image URL as written in the markup.
	Src string `json:"src"`

	// HasAlt is true when a non-empty alt attribute is present.
	HasAlt bool `json:"hasAlt"`
}

// Readability holds Flesch reading-ease metrics for the page text.
type Readability struct {
	// FleschReadingEase is the classic 0-100ish score (can go negative
	// for pathological text).
	FleschReadingEase float64 `json:"fleschReadingEase"`

	// AvgSentenceLength is words per sentence.
	AvgSentenceLength float64 `json:"avgSentenceLength"`

	// AvgSyllablesPerWord is the mean syllable estimate.
	AvgSyllablesPerWord float64 `json:"avgSyllablesPerWord"`

	// Level is the human-readable difficulty band.
	Level string `json:"level"`
}

// Keyword is one frequent word and its density in the page text.
type Keyword struct {
	// Word is the lowercased term.
	Word string `json:"word"`

	// Count is the number of occurrences.
	Count int `json:"count"`

	// Density is Count divided by the total non-stop-word count.
	Density float64 `json:"density"`
}

// Failed reports whether the page never produced a usable response.
func (p *PageResult) Failed() bool {
	return p.FetchError != ""
}

// HTTPError reports whether the page answered with a 4xx or 5xx status.
func (p *PageResult) HTTPError() bool {
	return p.StatusCode >= 400
}

// ImagesWithoutAlt counts images lacking alt text.
func (p *PageResult) ImagesWithoutAlt() int {
	n := 0
	for _, img := range p.Images {
		if !img.HasAlt {
			n++
		}
	}
	return n
}
