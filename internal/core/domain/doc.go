// Package domain contains the core business entities for the article
// generation pipeline: documents, chunks, stage artifacts, pipeline runs,
// and assembled article metadata.
//
// Domain types have no dependencies on adapters or infrastructure.
package domain
