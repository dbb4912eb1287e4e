// Package search scans text files for a query string during traversal.
package search

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/mkovalev/dirtree/internal/types"
	"github.com/mkovalev/dirtree/internal/utils"
)

const (
	// maxExcerptLength bounds the excerpt stored for each matched line.
	maxExcerptLength = 120
	// excerptEllipsis marks excerpts cut at maxExcerptLength.
	excerptEllipsis = "..."
	// initialScanBufferSize is the starting line buffer handed to the scanner.
	initialScanBufferSize = 64 * 1024
	// maxScanLineSize caps the line length the scanner accepts before the
	// file is abandoned as unscannable.
	maxScanLineSize = 1024 * 1024
)

// BinaryDetector classifies content read from an already opened file as
// binary. The traversal skips binary files silently, so tests can substitute
// a deterministic detector without touching the filesystem.
type BinaryDetector func(contentReader io.Reader) (bool, error)

// Searcher scans individual files for a fixed query string, honoring case
// sensitivity and a per-file match cap.
type Searcher struct {
	Query         string
	CaseSensitive bool
	MaxMatches    int
	DetectBinary  BinaryDetector

	foldedQuery string
}

// NewSearcher builds a Searcher from the resolved run configuration using the
// default content-sniffing binary detector.
func NewSearcher(configuration types.RunConfig) *Searcher {
	return &Searcher{
		Query:         configuration.SearchQuery,
		CaseSensitive: configuration.CaseSensitive,
		MaxMatches:    configuration.MaxMatches,
		DetectBinary:  defaultBinaryDetector,
		foldedQuery:   strings.ToLower(configuration.SearchQuery),
	}
}

// defaultBinaryDetector sniffs the leading bytes of the opened file.
func defaultBinaryDetector(contentReader io.Reader) (bool, error) {
	return utils.SniffBinary(contentReader, utils.DefaultSniffLimit)
}

// SearchFile scans one file line by line and reports up to MaxMatches matched
// lines. The second return value is false when the file produced no result:
// binary files, unreadable files, and files without matches all fall out of
// the report silently. The file is opened once; the detector sniffs its
// leading bytes and the scan restarts from the beginning. Scanning stops as
// soon as the cap is reached; the result is flagged truncated in that case.
func (searcher *Searcher) SearchFile(filePath string) (types.SearchResult, bool) {
	var searchResult types.SearchResult
	if searcher.Query == "" {
		return searchResult, false
	}

	fileHandle, openError := os.Open(filePath)
	if openError != nil {
		return searchResult, false
	}
	defer fileHandle.Close()

	if searcher.DetectBinary != nil {
		isBinary, sniffError := searcher.DetectBinary(fileHandle)
		if sniffError != nil || isBinary {
			return searchResult, false
		}
		if _, seekError := fileHandle.Seek(0, io.SeekStart); seekError != nil {
			return searchResult, false
		}
	}

	lineScanner := bufio.NewScanner(fileHandle)
	lineScanner.Buffer(make([]byte, 0, initialScanBufferSize), maxScanLineSize)

	lineNumber := 0
	for lineScanner.Scan() {
		lineNumber++
		lineText := lineScanner.Text()
		if !searcher.lineMatches(lineText) {
			continue
		}
		searchResult.Matches = append(searchResult.Matches, types.SearchMatch{
			LineNumber: lineNumber,
			Excerpt:    buildExcerpt(lineText),
		})
		if searcher.MaxMatches > 0 && len(searchResult.Matches) >= searcher.MaxMatches {
			// The rest of the file stays unscanned, so further matches are unknown.
			searchResult.Truncated = true
			break
		}
	}

	if len(searchResult.Matches) == 0 {
		return types.SearchResult{}, false
	}
	return searchResult, true
}

// lineMatches applies the configured case sensitivity to one line.
func (searcher *Searcher) lineMatches(lineText string) bool {
	if searcher.CaseSensitive {
		return strings.Contains(lineText, searcher.Query)
	}
	return strings.Contains(strings.ToLower(lineText), searcher.foldedQuery)
}

// buildExcerpt trims surrounding whitespace and bounds the excerpt length,
// appending an ellipsis when the line was cut.
func buildExcerpt(lineText string) string {
	excerpt := strings.TrimSpace(lineText)
	excerptRunes := []rune(excerpt)
	if len(excerptRunes) <= maxExcerptLength {
		return excerpt
	}
	return string(excerptRunes[:maxExcerptLength]) + excerptEllipsis
}
