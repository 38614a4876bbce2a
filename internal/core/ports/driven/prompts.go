package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a
	// sensible default or an error, depending on whether it is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names, one per pipeline stage.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptPlan is the content strategist template.
	// Expects one %s placeholder for the topic.
	PromptPlan = "plan"

	// PromptResearch is the researcher template.
	// Expects %s (topic) and %s (retrieved context block) placeholders.
	PromptResearch = "research"

	// PromptDraft is the writer template.
	// Expects %s (plan) and %s (research notes) placeholders.
	PromptDraft = "draft"

	// PromptFacts is the fact checker template.
	// Expects %s (draft article) and %s (retrieved context block) placeholders.
	PromptFacts = "facts"

	// PromptSEO is the SEO editor template.
	// Expects one %s placeholder for the draft article.
	PromptSEO = "seo"
)
