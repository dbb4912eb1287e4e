// Package traverse implements the filesystem walk that feeds the tree report.
package traverse

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/mkovalev/dirtree/internal/search"
	"github.com/mkovalev/dirtree/internal/types"
)

const (
	// hiddenNamePrefix marks entries excluded unless hidden files are requested.
	hiddenNamePrefix = "."
	// scanProgressFormat announces each directory listed in verbose mode.
	scanProgressFormat = "Scanning %s"
	// rootListingWarningFormat reports an unreadable target directory.
	rootListingWarningFormat = "Warning: unable to list %s: %v"
)

// Walker walks one directory tree and yields entries in depth-first pre-order.
// Within each directory, subdirectories come first and both groups are ordered
// lexicographically, so the sequence is deterministic for an unchanged tree.
type Walker struct {
	Configuration types.RunConfig
	Statistics    *types.Statistics
	Searcher      *search.Searcher
	Logger        *zap.Logger

	excludedPaths map[string]struct{}
}

// childRecord carries the listing metadata needed before an Entry is emitted.
type childRecord struct {
	name        string
	path        string
	isDirectory bool
	sizeBytes   int64
}

// Walk traverses the configured target directory and returns the ordered
// entry sequence together with per-file search results keyed by entry path.
// Per-directory listing failures are never fatal; they surface as entries
// marked inaccessible. The target itself is depth zero and is represented by
// the report header, so emitted entries start at depth one.
func (walker *Walker) Walk() ([]types.Entry, map[string]types.SearchResult, error) {
	walker.excludedPaths = walker.buildExcludedPaths()

	visitedRealPaths := map[string]struct{}{
		canonicalPathOrSelf(walker.Configuration.TargetPath): {},
	}

	var entries []types.Entry
	searchResults := make(map[string]types.SearchResult)

	rootChildren, rootListingError := walker.collectChildren(walker.Configuration.TargetPath)
	if rootListingError != nil {
		walker.logMessage(fmt.Sprintf(rootListingWarningFormat, walker.Configuration.TargetPath, rootListingError))
		return entries, searchResults, nil
	}

	walker.emitChildren(walker.Configuration.TargetPath, rootChildren, 1, visitedRealPaths, &entries, searchResults)
	return entries, searchResults, nil
}

// emitChildren appends one Entry per child and descends into expandable
// subdirectories. The visited set holds canonical paths of the current descent
// chain only; entries are released when the walk backtracks, so unrelated
// branches may traverse the same symlink target independently.
func (walker *Walker) emitChildren(
	directoryPath string,
	children []childRecord,
	entryDepth int,
	visitedRealPaths map[string]struct{},
	entries *[]types.Entry,
	searchResults map[string]types.SearchResult,
) {
	if walker.Configuration.Verbose {
		walker.logMessage(fmt.Sprintf(scanProgressFormat, directoryPath))
	}

	for childIndex, child := range children {
		isLastSibling := childIndex == len(children)-1

		if child.isDirectory {
			walker.emitDirectory(child, entryDepth, isLastSibling, visitedRealPaths, entries, searchResults)
			continue
		}

		fileEntry := types.Entry{
			Path:          child.path,
			Name:          child.name,
			Kind:          types.EntryKindFile,
			Depth:         entryDepth,
			IsLastSibling: isLastSibling,
			SizeBytes:     child.sizeBytes,
		}
		*entries = append(*entries, fileEntry)
		walker.recordEntry(fileEntry)

		if walker.Searcher != nil {
			searchResult, foundMatches := walker.Searcher.SearchFile(child.path)
			if foundMatches {
				searchResults[child.path] = searchResult
				walker.recordMatches(searchResult)
			}
		}
	}
}

// emitDirectory emits a single directory entry, handling cycle detection,
// depth limiting, and per-directory listing failures.
func (walker *Walker) emitDirectory(
	child childRecord,
	entryDepth int,
	isLastSibling bool,
	visitedRealPaths map[string]struct{},
	entries *[]types.Entry,
	searchResults map[string]types.SearchResult,
) {
	directoryEntry := types.Entry{
		Path:          child.path,
		Name:          child.name,
		Kind:          types.EntryKindDirectory,
		Depth:         entryDepth,
		IsLastSibling: isLastSibling,
	}

	canonicalPath := canonicalPathOrSelf(child.path)
	if _, alreadyVisited := visitedRealPaths[canonicalPath]; alreadyVisited {
		directoryEntry.CyclicSymlink = true
		*entries = append(*entries, directoryEntry)
		walker.recordEntry(directoryEntry)
		return
	}

	shouldExpand := !walker.Configuration.DepthLimited() || entryDepth < walker.Configuration.MaxDepth

	var grandchildren []childRecord
	if shouldExpand {
		var listingError error
		grandchildren, listingError = walker.collectChildren(child.path)
		if listingError != nil {
			directoryEntry.Inaccessible = true
			shouldExpand = false
		}
	}

	*entries = append(*entries, directoryEntry)
	walker.recordEntry(directoryEntry)

	if shouldExpand {
		visitedRealPaths[canonicalPath] = struct{}{}
		walker.emitChildren(child.path, grandchildren, entryDepth+1, visitedRealPaths, entries, searchResults)
		delete(visitedRealPaths, canonicalPath)
	}
}

// collectChildren lists a directory, applies the hidden and self-exclusion
// filters, and returns the remaining children sorted directories-first and
// lexicographically within each group.
func (walker *Walker) collectChildren(directoryPath string) ([]childRecord, error) {
	directoryEntries, readDirectoryError := os.ReadDir(directoryPath)
	if readDirectoryError != nil {
		return nil, readDirectoryError
	}

	children := make([]childRecord, 0, len(directoryEntries))
	for _, directoryEntry := range directoryEntries {
		entryName := directoryEntry.Name()
		if !walker.Configuration.IncludeHidden && strings.HasPrefix(entryName, hiddenNamePrefix) {
			continue
		}
		childPath := filepath.Join(directoryPath, entryName)
		if _, isExcluded := walker.excludedPaths[childPath]; isExcluded {
			continue
		}

		record := childRecord{name: entryName, path: childPath}
		// Stat follows symlinks so a symlinked directory classifies as a
		// directory; a broken symlink falls back to a zero-size file entry.
		fileInformation, statError := os.Stat(childPath)
		if statError == nil {
			record.isDirectory = fileInformation.IsDir()
			if !record.isDirectory {
				record.sizeBytes = fileInformation.Size()
			}
		}
		children = append(children, record)
	}

	sort.SliceStable(children, func(firstIndex, secondIndex int) bool {
		if children[firstIndex].isDirectory != children[secondIndex].isDirectory {
			return children[firstIndex].isDirectory
		}
		return children[firstIndex].name < children[secondIndex].name
	})
	return children, nil
}

// buildExcludedPaths collects the absolute paths that must never appear as
// entries: the configured output file and the running executable.
func (walker *Walker) buildExcludedPaths() map[string]struct{} {
	excluded := make(map[string]struct{})
	if walker.Configuration.OutputPath != "" {
		excluded[filepath.Clean(walker.Configuration.OutputPath)] = struct{}{}
	}
	executablePath, executablePathError := os.Executable()
	if executablePathError == nil {
		excluded[filepath.Clean(executablePath)] = struct{}{}
		excluded[canonicalPathOrSelf(executablePath)] = struct{}{}
	}
	return excluded
}

// recordEntry updates the statistics counters for one emitted entry.
func (walker *Walker) recordEntry(entry types.Entry) {
	if walker.Statistics == nil {
		return
	}
	if entry.Kind == types.EntryKindDirectory {
		walker.Statistics.Directories++
		return
	}
	walker.Statistics.Files++
	walker.Statistics.TotalBytes += entry.SizeBytes
}

// recordMatches updates the search counters for one matching file.
func (walker *Walker) recordMatches(searchResult types.SearchResult) {
	if walker.Statistics == nil {
		return
	}
	walker.Statistics.MatchingFiles++
	walker.Statistics.TotalMatches += len(searchResult.Matches)
}

// logMessage writes through the configured logger when one is present.
func (walker *Walker) logMessage(message string) {
	if walker.Logger != nil {
		walker.Logger.Info(message)
	}
}

// canonicalPathOrSelf resolves symlinks to a canonical real path, falling back
// to the cleaned input when resolution fails.
func canonicalPathOrSelf(path string) string {
	canonicalPath, evalError := filepath.EvalSymlinks(path)
	if evalError != nil {
		return filepath.Clean(path)
	}
	return canonicalPath
}
