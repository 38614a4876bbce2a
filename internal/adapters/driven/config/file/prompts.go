package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/litpress/litpress-cli/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads stage prompt templates from user-editable files on disk.
// Prompts are loaded from a configurable directory with fallback to embedded defaults.
//
// The store uses lazy initialisation - files are only created when first accessed,
// not in the constructor. This makes testing easier and avoids unexpected I/O.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts contains embedded default prompts, one per pipeline stage.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptPlan: `You are a content strategist with expertise in SEO content strategy and topical authority.

Define angle, audience, search intent, and an H2/H3 outline for an article about: %s

Return YAML with keys: angle, audience, intent, entities, outline[].
Return ONLY the YAML block, nothing else.`,

	driven.PromptResearch: `You are a rigorous researcher who ties every note to page numbers and avoids speculation.

From the source document, extract key facts, stats, terms, and citations for: %s

Use the retrieved passages below. Keep [p.N] citations exactly as they appear.

%s

Produce structured Markdown notes with sections:
- TL;DR (3 bullets)
- Key Claims (with page refs)
- Methods (short)
- Results (short, with metrics where possible)
- Limitations (short)`,

	driven.PromptDraft: `You are a senior technical writer. You write for humans first, search engines second.

Write a clear, engaging blog post (900-1200 words) for a smart non-expert, following the plan and using only the research notes. Include an intro that frames the question, clear H2/H3 sections, inline citations like [p.12], a short 'Why it matters' section, and a 'Further reading' list (3 items).

PLAN:
%s

NOTES:
%s

Return the Markdown article only.`,

	driven.PromptFacts: `You are a skeptical fact checker; you verify everything against the source.

Scan the draft below and validate its claims against the retrieved passages.

DRAFT:
%s

PASSAGES:
%s

Return a JSON array only: [{"claim": "...", "status": "supported"|"uncertain"|"unsupported", "sources": ["p.N", ...]}]`,

	driven.PromptSEO: `You are an SEO editor. Tasteful SEO; target what/why/how intent without clickbait.

Create SEO metadata for the article below:
- title (<=60 chars)
- slug
- meta_description (<=155 chars)
- 5-7 tags

ARTICLE:
%s

Return JSON only: {"title": "...", "slug": "...", "meta_description": "...", "tags": ["...", "..."]}`,
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.litpress/prompts/.
//
// The constructor does not perform any I/O - directory creation and
// file writes happen lazily on first Load() call.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".litpress", "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// On first call, initialises the prompt directory and creates default files.
// Returns cached value if available, otherwise loads from file.
// Falls back to embedded default if file doesn't exist.
func (s *PromptStore) Load(name string) (string, error) {
	// Ensure directory and defaults exist (lazy init)
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		// Fall back to embedded defaults if init failed
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	// Check cache first (read lock)
	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	// Load from file (no lock held during I/O)
	prompt, err := s.loadFromFile(name)
	if err != nil {
		// Fall back to embedded default
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	// Cache the result (write lock)
	// Use double-check pattern to avoid overwriting concurrent loads
	s.mu.Lock()
	if _, ok := s.cache[name]; !ok {
		s.cache[name] = prompt
	} else {
		prompt = s.cache[name]
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory and default files.
// Called once via sync.Once on first Load().
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	// Create default prompt files (only if they don't exist)
	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

// loadFromFile reads a prompt from disk.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	path := filepath.Join(s.promptDir, name+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil // Already exists or stat error (ignore)
	}

	content := `# litpress Prompts

This directory contains customisable prompt templates used by the
generation pipeline, one per stage.

## Files

- ` + "`plan.txt`" + ` - Content strategist (YAML plan)
- ` + "`research.txt`" + ` - Researcher (Markdown notes with page citations)
- ` + "`draft.txt`" + ` - Writer (Markdown article)
- ` + "`facts.txt`" + ` - Fact checker (JSON verification list)
- ` + "`seo.txt`" + ` - SEO editor (JSON metadata)

## Customisation

Edit any file to customise stage behaviour. Changes take effect on the
next pipeline run.

## Format Placeholders

Prompts use Go fmt placeholders:
- ` + "`%s`" + ` - String (e.g., the topic, upstream artifact, or retrieved context)

Ensure customised prompts maintain placeholders in the correct positions.
`
	return os.WriteFile(path, []byte(content), 0600)
}
