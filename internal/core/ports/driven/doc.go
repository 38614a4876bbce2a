// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
//
// The pipeline core depends only on these interfaces; concrete adapters
// (LLM providers, embedding providers, the vector store, the PDF
// extractor, the run ledger) live under internal/adapters/driven.
package driven
