package organize

import (
	"context"

	"filebot/pkg/types"
)

// Organizer defines the interface for organization passes.
// This allows the CLI and the watch drivers to be tested without touching disk.
type Organizer interface {
	// Run performs one pass over the target directory
	Run(ctx context.Context) (types.Summary, error)

	// ProcessFile runs a single file through classification, resolution and move
	ProcessFile(path string) types.OrganizeResult

	// DryRun reports whether moves are only simulated
	DryRun() bool
}

// Ensure Engine implements the Organizer interface
var _ Organizer = (*Engine)(nil)
