package domain

import "strings"

// DefaultTitle is the placeholder used when metadata carries no title.
const DefaultTitle = "Untitled"

// DefaultSlug is the placeholder slug for empty or unusable titles.
const DefaultSlug = "untitled"

// ArticleMetadata holds the SEO metadata attached to an assembled article.
// Missing optional fields are defaulted, never fatal.
type ArticleMetadata struct {
	// Title of the article. Defaults to "Untitled".
	Title string

	// Description is the meta description. Defaults to empty.
	Description string

	// Slug is always present; derived from Title when not supplied.
	Slug string

	// Tags is the list of tags. Defaults to empty.
	Tags []string

	// FAQ holds question/answer pairs for the optional FAQ section.
	FAQ []FAQItem

	// Schema is the structured-data object (JSON-LD). When nil, a
	// BlogPosting object is synthesised at assembly time.
	Schema map[string]any
}

// FAQItem is one question/answer pair in the FAQ section.
type FAQItem struct {
	Question string
	Answer   string
}

// DeriveSlug converts a title to a lowercase hyphen-separated slug.
// Runs of non-alphanumeric characters collapse to single hyphens and
// leading/trailing hyphens are trimmed. An empty result falls back to
// DefaultSlug so every document always has a usable slug.
func DeriveSlug(title string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(title) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !isAlnum {
			pendingHyphen = b.Len() > 0
			continue
		}
		if pendingHyphen {
			b.WriteByte('-')
			pendingHyphen = false
		}
		b.WriteRune(r)
	}
	slug := b.String()
	if slug == "" {
		return DefaultSlug
	}
	return slug
}
