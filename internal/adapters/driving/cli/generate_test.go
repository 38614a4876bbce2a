package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCmd_Use(t *testing.T) {
	assert.Equal(t, "generate [pdf]", generateCmd.Use)
}

func TestGenerateCmd_Flags(t *testing.T) {
	for _, name := range []string{"topic", "collection", "out", "top-k", "reset-index"} {
		assert.NotNil(t, generateCmd.Flags().Lookup(name), "missing flag %q", name)
	}
}

func TestGenerateCmd_RequiresExactlyOneArg(t *testing.T) {
	injectServices(t, &mockPipeline{}, &mockIndexer{}, &mockRetriever{}, nil)

	_, err := executeCommand("generate")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestGenerateCmd_RunsPipeline(t *testing.T) {
	pipeline := &mockPipeline{run: completedRun()}
	injectServices(t, pipeline, &mockIndexer{}, &mockRetriever{}, nil)

	out, err := executeCommand("generate", "/papers/sample.pdf",
		"--topic", "attention", "--collection", "papers", "--out", t.TempDir(), "--top-k", "6", "--reset-index")
	require.NoError(t, err)

	assert.Equal(t, "/papers/sample.pdf", pipeline.lastOpt.SourcePath)
	assert.Equal(t, "attention", pipeline.lastOpt.Topic)
	assert.Equal(t, "papers", pipeline.lastOpt.Collection)
	assert.Equal(t, 6, pipeline.lastOpt.TopK)
	assert.True(t, pipeline.lastOpt.ResetIndex)

	assert.Contains(t, out, "Run run-42 completed")
	assert.Contains(t, out, "Final article: out/sample.md")
}

func TestGenerateCmd_MarksRecoveredStages(t *testing.T) {
	pipeline := &mockPipeline{run: completedRun()}
	injectServices(t, pipeline, &mockIndexer{}, &mockRetriever{}, nil)

	out, err := executeCommand("generate", "/papers/sample.pdf")
	require.NoError(t, err)

	assert.Contains(t, out, "! facts")
}

func TestGenerateCmd_PipelineFailure(t *testing.T) {
	pipeline := &mockPipeline{err: errBackendDown}
	injectServices(t, pipeline, &mockIndexer{}, &mockRetriever{}, nil)

	_, err := executeCommand("generate", "/papers/sample.pdf")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipeline failed")
}
