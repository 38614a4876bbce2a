// Package sqlite provides a SQLite-backed run ledger.
//
// The ledger records every pipeline run and its per-stage outcomes so
// degraded stages (recovered or failed) can be reviewed after the fact
// without re-running the pipeline. Artifact text itself lives in the
// per-stage files; the ledger stores paths and statuses only.
package sqlite
