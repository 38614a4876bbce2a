package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveSlug_Basic(t *testing.T) {
	assert.Equal(t, "hello-world", DeriveSlug("Hello, World!"))
}

func TestDeriveSlug_Empty(t *testing.T) {
	assert.Equal(t, "untitled", DeriveSlug(""))
}

func TestDeriveSlug_CollapsesRuns(t *testing.T) {
	assert.Equal(t, "a-b-c", DeriveSlug("a --- b___c"))
}

func TestDeriveSlug_TrimsHyphens(t *testing.T) {
	assert.Equal(t, "inner", DeriveSlug("  ...inner... "))
}

func TestDeriveSlug_OnlyPunctuation(t *testing.T) {
	assert.Equal(t, "untitled", DeriveSlug("!!! ???"))
}

func TestDeriveSlug_Deterministic(t *testing.T) {
	assert.Equal(t, DeriveSlug("CRISPR: Gene Editing 101"), DeriveSlug("CRISPR: Gene Editing 101"))
	assert.Equal(t, "crispr-gene-editing-101", DeriveSlug("CRISPR: Gene Editing 101"))
}

func TestDeriveSlug_NonASCII(t *testing.T) {
	// Non-ASCII letters are treated as separators, not silently kept.
	assert.Equal(t, "caf-au-lait", DeriveSlug("Café au lait"))
}
