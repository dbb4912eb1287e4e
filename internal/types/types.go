// Package types defines every cross-package data structure used by the dirtree CLI.
package types

const (
	EntryKindFile      = "file"
	EntryKindDirectory = "directory"
)

// Entry is one filesystem node visited during traversal. An Entry is
// immutable once yielded by the traversal engine.
type Entry struct {
	Path          string
	Name          string
	Kind          string
	Depth         int
	IsLastSibling bool
	SizeBytes     int64
	Inaccessible  bool
	CyclicSymlink bool
}

// SearchMatch is a single matched line inside a file.
type SearchMatch struct {
	LineNumber int
	Excerpt    string
}

// SearchResult holds the matches found in one file. Truncated reports that
// scanning stopped because the per-file match cap was reached.
type SearchResult struct {
	Matches   []SearchMatch
	Truncated bool
}

// Statistics accumulates aggregate counters across one traversal. Counters
// are mutated once per emitted Entry; byte scaling happens only at render time.
type Statistics struct {
	Directories   int
	Files         int
	TotalBytes    int64
	MatchingFiles int
	TotalMatches  int
}

// RunConfig is the immutable configuration resolved once per invocation.
type RunConfig struct {
	TargetPath      string
	TargetName      string
	OutputPath      string
	MaxDepth        int
	IncludeHidden   bool
	ColorEnabled    bool
	SearchQuery     string
	CaseSensitive   bool
	MaxMatches      int
	StatEnabled     bool
	Verbose         bool
	CopyToClipboard bool
}

// SearchActive reports whether content search participates in the run.
func (configuration RunConfig) SearchActive() bool {
	return configuration.SearchQuery != ""
}

// DepthLimited reports whether a maximum traversal depth is configured.
func (configuration RunConfig) DepthLimited() bool {
	return configuration.MaxDepth > 0
}
