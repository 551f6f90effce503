package confighash

import "github.com/Aman-CERP/ra/internal/config"

// IndexStatus is the state of a project's search index relative to its
// configuration and the files on disk.
type IndexStatus int

const (
	// StatusCurrent means the index exists and matches the current config.
	StatusCurrent IndexStatus = iota
	// StatusConfigChanged means the index exists but the stored config hash
	// no longer matches, requiring a full rebuild.
	StatusConfigChanged
	// StatusStale means the index exists and the config matches, but files
	// on disk have changed since the last run (an incremental update
	// resolves this; detecting it is the manifest's job, not this
	// package's).
	StatusStale
	// StatusMissing means no index exists yet.
	StatusMissing
)

// Description returns a short human-readable label for display in status
// and CLI output.
func (s IndexStatus) Description() string {
	switch s {
	case StatusCurrent:
		return "current"
	case StatusConfigChanged:
		return "stale (config changed)"
	case StatusStale:
		return "stale"
	default:
		return "missing"
	}
}

// NeedsUpdate reports whether the index requires any kind of update.
func (s IndexStatus) NeedsUpdate() bool {
	return s != StatusCurrent
}

// NeedsRebuild reports whether the index requires a full rebuild rather
// than an incremental update.
func (s IndexStatus) NeedsRebuild() bool {
	return s == StatusConfigChanged || s == StatusMissing
}

// DetectIndexStatus inspects the index directory under configRoot and
// compares its stored config hash against cfg's current hash.
//
// This only distinguishes Missing and ConfigChanged; StatusStale (files
// changed on disk) is detected separately by diffing the manifest against
// a fresh directory scan.
func DetectIndexStatus(configRoot string, cfg *config.Config) IndexStatus {
	if configRoot == "" {
		return StatusMissing
	}

	idxDir := IndexDir(configRoot)
	if !indexExists(idxDir) {
		return StatusMissing
	}

	current := ComputeConfigHash(cfg)
	stored, ok := ReadStoredHash(idxDir)
	if !ok || stored != current {
		return StatusConfigChanged
	}
	return StatusCurrent
}
