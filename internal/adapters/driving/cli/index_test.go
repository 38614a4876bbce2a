package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexCmd_Use(t *testing.T) {
	assert.Equal(t, "index [pdf]", indexCmd.Use)
}

func TestIndexCmd_DerivesCollectionFromFileName(t *testing.T) {
	indexer := &mockIndexer{count: 12}
	injectServices(t, &mockPipeline{}, indexer, &mockRetriever{}, nil)
	indexCollection = ""

	out, err := executeCommand("index", "/papers/My Paper (v2).pdf")
	require.NoError(t, err)

	assert.Equal(t, "my-paper-v2", indexer.lastCollection)
	assert.Contains(t, out, `Indexed 12 chunks into "my-paper-v2"`)
}

func TestIndexCmd_ExplicitCollectionAndReset(t *testing.T) {
	indexer := &mockIndexer{count: 3}
	injectServices(t, &mockPipeline{}, indexer, &mockRetriever{}, nil)

	_, err := executeCommand("index", "/papers/doc.pdf", "--collection", "papers", "--reset")
	require.NoError(t, err)

	assert.Equal(t, "papers", indexer.lastCollection)
	assert.True(t, indexer.lastReset)

	indexCollection = ""
	indexReset = false
}

func TestIndexCmd_Failure(t *testing.T) {
	indexer := &mockIndexer{err: errBackendDown}
	injectServices(t, &mockPipeline{}, indexer, &mockRetriever{}, nil)

	_, err := executeCommand("index", "/papers/doc.pdf")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "indexing failed")
}
