package repo

import "context"

// Revision represents a specific git point-in-time (tag, branch or hash).
type Revision string

func (r Revision) String() string { return string(r) }

// Gitter defines the git operations srcfmt relies on.
type Gitter interface {
	// ChangedFiles returns the absolute paths of files added, copied, modified or
	// renamed between since and the working tree of the repository containing root.
	ChangedFiles(ctx context.Context, root string, since Revision) ([]string, error)
}
