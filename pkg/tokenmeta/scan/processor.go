package scan

import (
	"context"

	"github.com/juke/dril-dao/pkg/tokenmeta"
)

// EntryProcessor processes individual token configuration records.
// External apps implement this to define custom processing logic.
//
// Example implementations:
//   - Event emitter (replays configuration events to a message queue)
//   - Backfill job creator (publishes metadata documents for configured tokens)
//   - Migrator (rewrites base URIs after a gateway move)
//   - Validator (checks that resolved URIs are reachable)
//   - Reporter (generates reports/exports)
type EntryProcessor interface {
	// Process is called for each record found during scan.
	// Return error to mark this record as failed (scan continues with the next one).
	Process(ctx context.Context, entry tokenmeta.TokenConfigEntry) error
}
