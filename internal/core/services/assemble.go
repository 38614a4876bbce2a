package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/litpress/litpress-cli/internal/core/domain"
)

// CoerceMetadata parses ungoverned generation output into a metadata
// object through an ordered fallback chain: JSON, fence-stripped JSON,
// YAML, first brace-delimited substring as JSON. Total failure yields
// an empty object, never an error. Well-formed JSON input survives the
// chain unchanged.
func CoerceMetadata(text string) map[string]any {
	if meta := parseJSONObject(text); meta != nil {
		return meta
	}

	stripped := stripOuterFence(text)
	if meta := parseJSONObject(stripped); meta != nil {
		return meta
	}

	var yamlMeta map[string]any
	if err := yaml.Unmarshal([]byte(stripped), &yamlMeta); err == nil && yamlMeta != nil {
		return yamlMeta
	}

	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		if meta := parseJSONObject(text[start : end+1]); meta != nil {
			return meta
		}
	}

	return map[string]any{}
}

func parseJSONObject(text string) map[string]any {
	var meta map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &meta); err != nil {
		return nil
	}
	return meta
}

// MetadataFromMap maps a coerced metadata object onto ArticleMetadata,
// defaulting missing optional fields and deriving the slug from the
// title when absent. It never fails for missing metadata.
func MetadataFromMap(meta map[string]any) domain.ArticleMetadata {
	out := domain.ArticleMetadata{
		Title: stringField(meta, "title"),
	}
	if out.Title == "" {
		out.Title = domain.DefaultTitle
	}

	out.Description = stringField(meta, "meta_description")
	if out.Description == "" {
		out.Description = stringField(meta, "description")
	}

	out.Slug = stringField(meta, "slug")
	if out.Slug == "" {
		out.Slug = domain.DeriveSlug(out.Title)
	}

	out.Tags = stringList(meta, "tags")
	out.FAQ = faqItems(meta)

	if schema, ok := meta["schema"].(map[string]any); ok {
		out.Schema = schema
	}

	return out
}

func stringField(meta map[string]any, key string) string {
	s, _ := meta[key].(string)
	return strings.TrimSpace(s)
}

func stringList(meta map[string]any, key string) []string {
	items, ok := meta[key].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

// faqItems keeps only well-formed pairs: both question and answer
// present and non-empty.
func faqItems(meta map[string]any) []domain.FAQItem {
	items, ok := meta["faq"].([]any)
	if !ok {
		return nil
	}
	var out []domain.FAQItem
	for _, item := range items {
		pair, ok := item.(map[string]any)
		if !ok {
			continue
		}
		q, _ := pair["question"].(string)
		a, _ := pair["answer"].(string)
		q, a = strings.TrimSpace(q), strings.TrimSpace(a)
		if q == "" || a == "" {
			continue
		}
		out = append(out, domain.FAQItem{Question: q, Answer: a})
	}
	return out
}

// Assembler produces the final self-contained document from the draft
// article and the SEO stage metadata.
type Assembler struct {
	// Now supplies the publication date for synthesised structured
	// data. Defaults to time.Now.
	Now func() time.Time
}

// NewAssembler creates an assembler using the wall clock.
func NewAssembler() *Assembler {
	return &Assembler{Now: time.Now}
}

// Assemble normalises the article body, coerces the SEO metadata and
// composes front matter, body, optional FAQ section and the structured
// data block, each separated by one blank line.
func (a *Assembler) Assemble(articleText, seoText string) (string, domain.ArticleMetadata) {
	body := NormalizeArticle(articleText)
	meta := MetadataFromMap(CoerceMetadata(seoText))

	sections := []string{frontMatter(meta)}
	if body := strings.TrimSpace(body); body != "" {
		sections = append(sections, body)
	}
	if faq := faqSection(meta.FAQ); faq != "" {
		sections = append(sections, faq)
	}
	if block := a.schemaBlock(meta); block != "" {
		sections = append(sections, block)
	}

	return strings.Join(sections, "\n\n") + "\n", meta
}

// frontMatter renders the metadata block. Title and description are
// quoted with embedded backslashes and quotes escaped so they cannot
// break the block's own delimiters; tags render in flow style, quoted
// individually when they carry flow syntax characters.
func frontMatter(meta domain.ArticleMetadata) string {
	items := make([]string, len(meta.Tags))
	for i, tag := range meta.Tags {
		items[i] = flowItem(tag)
	}
	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "title: %s\n", quoteYAML(meta.Title))
	fmt.Fprintf(&b, "description: %s\n", quoteYAML(meta.Description))
	fmt.Fprintf(&b, "slug: %s\n", meta.Slug)
	fmt.Fprintf(&b, "tags: [%s]\n", strings.Join(items, ", "))
	b.WriteString("---")
	return b.String()
}

func quoteYAML(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

func flowItem(s string) string {
	if s == "" || s != strings.TrimSpace(s) || strings.ContainsAny(s, `,[]{}"\:#'`) {
		return quoteYAML(s)
	}
	return s
}

func faqSection(items []domain.FAQItem) string {
	if len(items) == 0 {
		return ""
	}
	var parts []string
	parts = append(parts, "## FAQ")
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("**Q: %s**\n\nA: %s", item.Question, item.Answer))
	}
	return strings.Join(parts, "\n\n")
}

// schemaBlock renders the structured data block. When the metadata
// carries no schema object a BlogPosting object is synthesised.
func (a *Assembler) schemaBlock(meta domain.ArticleMetadata) string {
	schema := meta.Schema
	if schema == nil {
		now := time.Now
		if a.Now != nil {
			now = a.Now
		}
		schema = map[string]any{
			"@context":      "https://schema.org",
			"@type":         "BlogPosting",
			"headline":      meta.Title,
			"description":   meta.Description,
			"keywords":      strings.Join(meta.Tags, ", "),
			"datePublished": now().Format("2006-01-02"),
		}
	}

	encoded, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return ""
	}
	return "<script type=\"application/ld+json\">\n" + string(encoded) + "\n</script>"
}
