package domain

// Snippet is a single retrieved passage with provenance.
type Snippet struct {
	// Text is the chunk content.
	Text string `json:"text"`

	// Source tags the origin of the chunk (e.g. "pdf").
	Source string `json:"source"`

	// Position is the chunk's ordinal position in the source document.
	Position int `json:"position"`

	// Score is the similarity score (higher is closer).
	Score float64 `json:"score"`
}

// RetrievalResult is the structured response of the retrieval tool.
type RetrievalResult struct {
	Snippets []Snippet `json:"snippets"`
}
