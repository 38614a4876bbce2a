package services

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litpress/litpress-cli/internal/core/domain"
)

func TestCoerceMetadata_WellFormedJSONSurvivesUnchanged(t *testing.T) {
	original := map[string]any{
		"title": "Test Post",
		"slug":  "test-post",
		"tags":  []any{"a", "b"},
	}
	encoded, err := json.Marshal(original)
	require.NoError(t, err)

	got := CoerceMetadata(string(encoded))

	assert.Equal(t, original, got)
}

func TestCoerceMetadata_FencedJSON(t *testing.T) {
	got := CoerceMetadata("```json\n{\"title\": \"Fenced\"}\n```")

	assert.Equal(t, "Fenced", got["title"])
}

func TestCoerceMetadata_YAMLFallback(t *testing.T) {
	got := CoerceMetadata("title: From YAML\nslug: from-yaml")

	assert.Equal(t, "From YAML", got["title"])
	assert.Equal(t, "from-yaml", got["slug"])
}

func TestCoerceMetadata_BraceExtraction(t *testing.T) {
	got := CoerceMetadata("Here is your metadata:\n{\"title\": \"Embedded\"}\nHope that helps!")

	assert.Equal(t, "Embedded", got["title"])
}

func TestCoerceMetadata_TotalFailureYieldsEmptyObject(t *testing.T) {
	got := CoerceMetadata("{not json")

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMetadataFromMap_Defaults(t *testing.T) {
	meta := MetadataFromMap(map[string]any{})

	assert.Equal(t, domain.DefaultTitle, meta.Title)
	assert.Equal(t, domain.DefaultSlug, meta.Slug)
	assert.Empty(t, meta.Description)
	assert.Empty(t, meta.Tags)
	assert.Empty(t, meta.FAQ)
}

func TestMetadataFromMap_SlugDerivedFromTitle(t *testing.T) {
	meta := MetadataFromMap(map[string]any{"title": "Hello, World!"})

	assert.Equal(t, "hello-world", meta.Slug)
}

func TestMetadataFromMap_ExplicitSlugWins(t *testing.T) {
	meta := MetadataFromMap(map[string]any{"title": "Hello", "slug": "custom-slug"})

	assert.Equal(t, "custom-slug", meta.Slug)
}

func TestMetadataFromMap_MetaDescriptionPreferred(t *testing.T) {
	meta := MetadataFromMap(map[string]any{
		"meta_description": "from seo",
		"description":      "generic",
	})

	assert.Equal(t, "from seo", meta.Description)
}

func TestMetadataFromMap_DropsMalformedFAQPairs(t *testing.T) {
	meta := MetadataFromMap(map[string]any{
		"faq": []any{
			map[string]any{"question": "Q1?", "answer": "A1."},
			map[string]any{"question": "Q2?"},
			map[string]any{"answer": "orphan"},
			"not a pair",
		},
	})

	require.Len(t, meta.FAQ, 1)
	assert.Equal(t, "Q1?", meta.FAQ[0].Question)
	assert.Equal(t, "A1.", meta.FAQ[0].Answer)
}

func fixedClockAssembler() *Assembler {
	return &Assembler{Now: func() time.Time {
		return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	}}
}

func TestAssemble_FrontMatterAndBody(t *testing.T) {
	a := fixedClockAssembler()

	doc, meta := a.Assemble(
		"# Heading\n\nBody text.",
		`{"title": "Test Post", "meta_description": "About testing.", "tags": ["a", "b"]}`,
	)

	assert.Equal(t, "test-post", meta.Slug)
	assert.True(t, strings.HasPrefix(doc, "---\n"))
	assert.Contains(t, doc, "title: \"Test Post\"\n")
	assert.Contains(t, doc, "description: \"About testing.\"\n")
	assert.Contains(t, doc, "slug: test-post\n")
	assert.Contains(t, doc, "tags: [a, b]\n")
	assert.Contains(t, doc, "\n\n# Heading\n\nBody text.\n\n")
}

func TestAssemble_EscapesQuotesInFrontMatter(t *testing.T) {
	a := fixedClockAssembler()

	doc, _ := a.Assemble("Body.", `{"title": "He said \"go\""}`)

	assert.Contains(t, doc, `title: "He said \"go\""`)
}

func TestAssemble_EscapesBackslashesInFrontMatter(t *testing.T) {
	a := fixedClockAssembler()

	doc, _ := a.Assemble("Body.", `{"title": "ends with backslash \\", "meta_description": "C:\\path\\"}`)

	assert.Contains(t, doc, `title: "ends with backslash \\"`+"\n")
	assert.Contains(t, doc, `description: "C:\\path\\"`+"\n")
}

func TestAssemble_QuotesTagsWithFlowSyntax(t *testing.T) {
	a := fixedClockAssembler()

	doc, _ := a.Assemble("Body.", `{"title": "T", "tags": ["plain", "a,b", "c]d"]}`)

	assert.Contains(t, doc, `tags: [plain, "a,b", "c]d"]`+"\n")
}

func TestAssemble_MalformedMetadataDoesNotCrash(t *testing.T) {
	a := fixedClockAssembler()

	doc, meta := a.Assemble("# Article\n\nText.", "{not json")

	assert.Equal(t, domain.DefaultSlug, meta.Slug)
	assert.Contains(t, doc, "slug: untitled\n")
	assert.Contains(t, doc, "# Article")
}

func TestAssemble_FenceWrappedArticleStripped(t *testing.T) {
	a := fixedClockAssembler()

	doc, _ := a.Assemble("```markdown\n# Wrapped\n\nContent.\n```", `{"title": "T"}`)

	assert.Contains(t, doc, "\n# Wrapped\n")
	assert.NotContains(t, doc, "```markdown")
}

func TestAssemble_SynthesisesBlogPostingSchema(t *testing.T) {
	a := fixedClockAssembler()

	doc, _ := a.Assemble("Body.", `{"title": "Test Post", "tags": ["x"]}`)

	require.Contains(t, doc, `<script type="application/ld+json">`)
	start := strings.Index(doc, `<script type="application/ld+json">`)
	end := strings.Index(doc, "</script>")
	require.Greater(t, end, start)

	payload := doc[start+len(`<script type="application/ld+json">`) : end]
	var schema map[string]any
	require.NoError(t, json.Unmarshal([]byte(payload), &schema))

	assert.Equal(t, "BlogPosting", schema["@type"])
	assert.Equal(t, "Test Post", schema["headline"])
	assert.Equal(t, "2026-03-14", schema["datePublished"])
}

func TestAssemble_ExplicitSchemaPassedThrough(t *testing.T) {
	a := fixedClockAssembler()

	doc, _ := a.Assemble("Body.", `{"title": "T", "schema": {"@type": "Article", "name": "custom"}}`)

	assert.Contains(t, doc, `"@type": "Article"`)
	assert.Contains(t, doc, `"name": "custom"`)
	assert.NotContains(t, doc, "BlogPosting")
}

func TestAssemble_FAQSectionOnlyWhenWellFormed(t *testing.T) {
	a := fixedClockAssembler()

	withFAQ, _ := a.Assemble("Body.", `{"title": "T", "faq": [{"question": "Why?", "answer": "Because."}]}`)
	assert.Contains(t, withFAQ, "## FAQ")
	assert.Contains(t, withFAQ, "**Q: Why?**")
	assert.Contains(t, withFAQ, "A: Because.")

	withoutFAQ, _ := a.Assemble("Body.", `{"title": "T", "faq": [{"question": "Why?"}]}`)
	assert.NotContains(t, withoutFAQ, "## FAQ")
}

func TestAssemble_SectionsSeparatedBySingleBlankLine(t *testing.T) {
	a := fixedClockAssembler()

	doc, _ := a.Assemble("Body text.", `{"title": "T"}`)

	assert.NotContains(t, doc, "\n\n\n")
	assert.True(t, strings.HasSuffix(doc, "</script>\n"))
}

func TestAssemble_EmptyBodySkipped(t *testing.T) {
	a := fixedClockAssembler()

	doc, _ := a.Assemble("", `{"title": "T"}`)

	assert.NotContains(t, doc, "\n\n\n")
	assert.Contains(t, doc, "---\n\n<script")
}
