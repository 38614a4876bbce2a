package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litpress/litpress-cli/internal/core/domain"
)

func TestStages_FixedSequence(t *testing.T) {
	stages := Stages()

	require.Len(t, stages, 5)
	assert.Equal(t, "plan", stages[0].ID)
	assert.Equal(t, "research", stages[1].ID)
	assert.Equal(t, "draft", stages[2].ID)
	assert.Equal(t, "facts", stages[3].ID)
	assert.Equal(t, "seo", stages[4].ID)

	assert.Equal(t, domain.KindYAML, stages[0].Kind)
	assert.Equal(t, domain.KindJSON, stages[3].Kind)
	assert.Equal(t, domain.KindJSON, stages[4].Kind)
}

func TestStages_WriterReceivesPlanAndNotesOnly(t *testing.T) {
	for _, stage := range Stages() {
		if stage.ID != "draft" {
			continue
		}
		assert.Equal(t, []string{"plan", "research"}, stage.Inputs)
		assert.Nil(t, stage.Queries)
	}
}

func TestResearchQueries_FourFocusedSections(t *testing.T) {
	queries := researchQueries("quantum error correction", nil)

	require.Len(t, queries, 4)
	labels := []string{queries[0].Label, queries[1].Label, queries[2].Label, queries[3].Label}
	assert.Equal(t, []string{"Claims", "Methods", "Results", "Limitations"}, labels)
	for _, q := range queries {
		assert.Contains(t, q.Query, "quantum error correction")
	}
}

func TestFactQueries_FromDraftHeadings(t *testing.T) {
	draft := "# Title\n\n## Methods\n\ntext\n\n## Results\n\ntext\n\n### Caveats\n\ntext"

	queries := factQueries("topic", map[string]string{"draft": draft})

	require.Len(t, queries, 4)
	assert.Equal(t, "Title", queries[0].Query)
	assert.Equal(t, "Methods", queries[1].Query)
	assert.Equal(t, "Results", queries[2].Query)
	assert.Equal(t, "Caveats", queries[3].Query)
}

func TestFactQueries_FallsBackToTopic(t *testing.T) {
	queries := factQueries("the topic", map[string]string{"draft": "no headings here"})

	require.Len(t, queries, 1)
	assert.Contains(t, queries[0].Query, "the topic")
}
