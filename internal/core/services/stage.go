package services

import (
	"strings"

	"github.com/litpress/litpress-cli/internal/core/domain"
	"github.com/litpress/litpress-cli/internal/core/ports/driven"
)

// Input names usable in a stage's Inputs list, besides prior stage ids.
const (
	// InputTopic is the article topic from the run options.
	InputTopic = "topic"

	// InputContext is the merged retrieval context block built from
	// the stage's sub-queries.
	InputContext = "context"
)

// RetrievalQuery is one focused sub-query a stage issues while
// assembling its prompt. The label becomes the section heading in the
// merged context block.
type RetrievalQuery struct {
	Label string
	Query string
}

// Stage describes one generation step. Variation between roles is
// configuration, not behaviour: the orchestrator runs every stage the
// same way, driven by these fields.
type Stage struct {
	// ID is the stage identifier used in artifact filenames.
	ID string

	// Role is the human-readable role name.
	Role string

	// PromptName selects the template in the prompt store.
	PromptName string

	// Kind declares the expected output format. Structured kinds go
	// through parse-and-recover handling after generation.
	Kind domain.ArtifactKind

	// Inputs names the template arguments in order: InputTopic,
	// InputContext, or a prior stage id.
	Inputs []string

	// Temperature for the generation call.
	Temperature float64

	// MaxTokens for the generation call.
	MaxTokens int

	// Queries derives the stage's retrieval sub-queries; nil for
	// stages that do not retrieve.
	Queries func(topic string, artifacts map[string]string) []RetrievalQuery
}

// Stages returns the pipeline stage sequence in execution order.
// The order is fixed: no stage may be skipped or reordered.
func Stages() []Stage {
	return []Stage{
		{
			ID:          "plan",
			Role:        "Content Strategist",
			PromptName:  driven.PromptPlan,
			Kind:        domain.KindYAML,
			Inputs:      []string{InputTopic},
			Temperature: 0.4,
			MaxTokens:   1024,
		},
		{
			ID:          "research",
			Role:        "Researcher",
			PromptName:  driven.PromptResearch,
			Kind:        domain.KindMarkdown,
			Inputs:      []string{InputTopic, InputContext},
			Temperature: 0.2,
			MaxTokens:   2048,
			Queries:     researchQueries,
		},
		{
			ID:          "draft",
			Role:        "Writer",
			PromptName:  driven.PromptDraft,
			Kind:        domain.KindMarkdown,
			Inputs:      []string{"plan", "research"},
			Temperature: 0.7,
			MaxTokens:   4096,
		},
		{
			ID:          "facts",
			Role:        "Fact Checker",
			PromptName:  driven.PromptFacts,
			Kind:        domain.KindJSON,
			Inputs:      []string{"draft", InputContext},
			Temperature: 0.0,
			MaxTokens:   2048,
			Queries:     factQueries,
		},
		{
			ID:          "seo",
			Role:        "SEO Editor",
			PromptName:  driven.PromptSEO,
			Kind:        domain.KindJSON,
			Inputs:      []string{"draft"},
			Temperature: 0.3,
			MaxTokens:   1024,
		},
	}
}

// researchQueries issues four focused sub-queries so the merged context
// block covers the document's claims, methods, results and limitations
// as independently retrieved sections.
func researchQueries(topic string, _ map[string]string) []RetrievalQuery {
	return []RetrievalQuery{
		{Label: "Claims", Query: topic + " key claims and findings"},
		{Label: "Methods", Query: topic + " methods and approach"},
		{Label: "Results", Query: topic + " results and metrics"},
		{Label: "Limitations", Query: topic + " limitations and caveats"},
	}
}

// factQueries retrieves against the draft's section headings so the
// fact checker sees source passages for what the draft actually says.
// Falls back to the topic when the draft has no headings.
func factQueries(topic string, artifacts map[string]string) []RetrievalQuery {
	draft := artifacts["draft"]

	var queries []RetrievalQuery
	for _, line := range strings.Split(draft, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#") {
			continue
		}
		heading := strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
		if heading == "" {
			continue
		}
		queries = append(queries, RetrievalQuery{Label: heading, Query: heading})
		if len(queries) == 4 {
			break
		}
	}

	if len(queries) == 0 {
		queries = append(queries, RetrievalQuery{Label: "Claims", Query: topic + " key claims and findings"})
	}
	return queries
}
