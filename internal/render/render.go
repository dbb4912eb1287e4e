// Package render turns the ordered entry sequence into the textual tree report.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/mkovalev/dirtree/internal/types"
	"github.com/mkovalev/dirtree/internal/utils"
)

const (
	treeBranchConnector = "├── "
	treeLastConnector   = "└── "
	treeBranchPadding   = "│   "
	treeLastPadding     = "    "

	directorySuffix = "/"

	headerTitleFormat = "Directory Tree of '%s'\n"
	headerPathFormat  = "Full Path: %s\n"

	cycleAnnotation        = " -> [cycle detected]"
	inaccessibleAnnotation = " [inaccessible]"

	matchLineFormat      = "line %d: %s"
	matchLimitMarker     = "(match limit reached)"
	footerDirectoriesFmt = "Directories: %d\n"
	footerFilesFmt       = "Files: %d\n"
	footerTotalSizeFmt   = "Total size: %s\n"
	footerSearchHitsFmt  = "Search hits: %d files (%d matches)\n"

	previewBannerTitle = "Directory Tree Preview:"
	previewRuleMark    = "="
	previewRuleWidth   = 69
	summaryBannerTitle = "Statistics Summary:"
	summaryRuleWidth   = 20

	summaryDirectoriesFormat = "Directories:   %d"
	summaryFilesFormat       = "Files:         %d (Total Size: %s)"
	summarySearchHitsFormat  = "Search Hits:   %d files (%d matches)"
)

// Renderer produces the report text and the console preview for one run.
// Report color codes are embedded only when the configuration enables them;
// that palette is force-enabled because the report targets a file, not a
// terminal. The console palette is never forced, so redirected console output
// stays plain.
type Renderer struct {
	Configuration types.RunConfig

	directoryColor   *color.Color
	fileColor        *color.Color
	matchedFileColor *color.Color

	previewTreeColor    *color.Color
	previewMatchedColor *color.Color
	previewMatchColor   *color.Color
	previewMarkerColor  *color.Color
}

// NewRenderer constructs a Renderer, preparing the report palette when the run
// requests colored output and the terminal-sensitive console palette always.
func NewRenderer(configuration types.RunConfig) *Renderer {
	renderer := &Renderer{Configuration: configuration}
	if configuration.ColorEnabled {
		renderer.directoryColor = forcedColor(color.FgBlue)
		renderer.fileColor = forcedColor(color.FgGreen)
		renderer.matchedFileColor = forcedColor(color.FgYellow)
	}
	renderer.previewTreeColor = color.New(color.FgGreen)
	renderer.previewMatchedColor = color.New(color.FgYellow)
	renderer.previewMatchColor = color.New(color.FgCyan)
	renderer.previewMarkerColor = color.New(color.FgRed)
	return renderer
}

// forcedColor builds a color attribute that emits escape sequences even when
// stdout is not a terminal.
func forcedColor(attribute color.Attribute) *color.Color {
	colorValue := color.New(attribute)
	colorValue.EnableColor()
	return colorValue
}

// entryLayout carries the computed tree glyphs for one entry.
type entryLayout struct {
	entry       types.Entry
	linePrefix  string
	connector   string
	matchPrefix string
}

// layoutEntries reconstructs per-entry prefixes from the flat depth-first
// sequence. ancestorPaddings[i] holds the continuation glyph contributed by
// the ancestor at depth i+1; the slice is truncated whenever the walk
// backtracks to a shallower depth.
func layoutEntries(entries []types.Entry) []entryLayout {
	layouts := make([]entryLayout, 0, len(entries))
	var ancestorPaddings []string
	for _, entry := range entries {
		if len(ancestorPaddings) > entry.Depth-1 {
			ancestorPaddings = ancestorPaddings[:entry.Depth-1]
		}
		linePrefix := strings.Join(ancestorPaddings, "")

		connector := treeBranchConnector
		childPadding := treeBranchPadding
		if entry.IsLastSibling {
			connector = treeLastConnector
			childPadding = treeLastPadding
		}

		layouts = append(layouts, entryLayout{
			entry:       entry,
			linePrefix:  linePrefix,
			connector:   connector,
			matchPrefix: linePrefix + childPadding,
		})

		if entry.Kind == types.EntryKindDirectory {
			ancestorPaddings = append(ancestorPaddings, childPadding)
		}
	}
	return layouts
}

// Render assembles the full report: header, tree body with optional match
// annotations, and the optional statistics footer.
func (renderer *Renderer) Render(
	entries []types.Entry,
	searchResults map[string]types.SearchResult,
	statistics *types.Statistics,
) string {
	var reportBuffer bytes.Buffer
	reportBuffer.WriteString(fmt.Sprintf(headerTitleFormat, renderer.Configuration.TargetName))
	reportBuffer.WriteString(fmt.Sprintf(headerPathFormat, renderer.Configuration.TargetPath))
	reportBuffer.WriteString("\n")

	for _, layout := range layoutEntries(entries) {
		reportBuffer.WriteString(layout.linePrefix + layout.connector + renderer.renderEntryLabel(layout.entry, searchResults) + "\n")

		if layout.entry.Kind == types.EntryKindDirectory {
			continue
		}
		if searchResult, hasMatches := searchResults[layout.entry.Path]; hasMatches {
			renderer.renderMatchLines(&reportBuffer, layout.matchPrefix, searchResult)
		}
	}

	if renderer.Configuration.StatEnabled && statistics != nil {
		renderer.renderFooter(&reportBuffer, statistics)
	}
	return reportBuffer.String()
}

// RenderConsolePreview assembles the console echo of a finished run: a framed
// copy of the tree with match sub-lines, followed by the statistics summary
// when statistics were collected.
func (renderer *Renderer) RenderConsolePreview(
	entries []types.Entry,
	searchResults map[string]types.SearchResult,
	statistics *types.Statistics,
) string {
	var previewBuffer bytes.Buffer
	previewRule := strings.Repeat(previewRuleMark, previewRuleWidth)
	previewBuffer.WriteString("\n" + renderer.previewTreeColor.Sprint(previewBannerTitle) + "\n")
	previewBuffer.WriteString(renderer.previewTreeColor.Sprint(previewRule) + "\n")

	for _, layout := range layoutEntries(entries) {
		searchResult, hasMatches := searchResults[layout.entry.Path]
		isMatchedFile := hasMatches && layout.entry.Kind == types.EntryKindFile

		lineColor := renderer.previewTreeColor
		if renderer.Configuration.ColorEnabled && isMatchedFile {
			lineColor = renderer.previewMatchedColor
		}
		previewBuffer.WriteString(lineColor.Sprint(layout.linePrefix+layout.connector+plainEntryLabel(layout.entry)) + "\n")

		if !isMatchedFile {
			continue
		}
		for _, match := range searchResult.Matches {
			previewBuffer.WriteString(renderer.previewMatchColor.Sprint(layout.matchPrefix+treeLastConnector+fmt.Sprintf(matchLineFormat, match.LineNumber, match.Excerpt)) + "\n")
		}
		if searchResult.Truncated {
			previewBuffer.WriteString(renderer.previewMarkerColor.Sprint(layout.matchPrefix+treeLastConnector+matchLimitMarker) + "\n")
		}
	}
	previewBuffer.WriteString(renderer.previewTreeColor.Sprint(previewRule) + "\n")

	if renderer.Configuration.StatEnabled && statistics != nil {
		renderer.renderSummary(&previewBuffer, statistics)
	}
	return previewBuffer.String()
}

// renderEntryLabel builds the display text for one report entry, applying the
// directory suffix, the report palette, and inline error annotations.
// Annotations stay outside the colored span so the report remains
// grep-friendly.
func (renderer *Renderer) renderEntryLabel(entry types.Entry, searchResults map[string]types.SearchResult) string {
	displayName := entry.Name
	if entry.Kind == types.EntryKindDirectory {
		displayName += directorySuffix
	}

	if renderer.Configuration.ColorEnabled {
		displayName = renderer.colorizeName(entry, displayName, searchResults)
	}

	if entry.CyclicSymlink {
		displayName += cycleAnnotation
	}
	if entry.Inaccessible {
		displayName += inaccessibleAnnotation
	}
	return displayName
}

// plainEntryLabel builds the uncolored display text for one entry; the console
// preview colors whole lines, so the label itself stays plain.
func plainEntryLabel(entry types.Entry) string {
	displayName := entry.Name
	if entry.Kind == types.EntryKindDirectory {
		displayName += directorySuffix
	}
	if entry.CyclicSymlink {
		displayName += cycleAnnotation
	}
	if entry.Inaccessible {
		displayName += inaccessibleAnnotation
	}
	return displayName
}

// colorizeName wraps the display name with the palette entry matching the
// entry kind; files carrying search matches take the highlight color.
func (renderer *Renderer) colorizeName(entry types.Entry, displayName string, searchResults map[string]types.SearchResult) string {
	if entry.Kind == types.EntryKindDirectory {
		return renderer.directoryColor.Sprint(displayName)
	}
	if _, hasMatches := searchResults[entry.Path]; hasMatches {
		return renderer.matchedFileColor.Sprint(displayName)
	}
	return renderer.fileColor.Sprint(displayName)
}

// renderMatchLines appends the per-match sub-lines under a matching file.
func (renderer *Renderer) renderMatchLines(reportBuffer *bytes.Buffer, matchPrefix string, searchResult types.SearchResult) {
	for _, match := range searchResult.Matches {
		reportBuffer.WriteString(matchPrefix + treeLastConnector + fmt.Sprintf(matchLineFormat, match.LineNumber, match.Excerpt) + "\n")
	}
	if searchResult.Truncated {
		reportBuffer.WriteString(matchPrefix + treeLastConnector + matchLimitMarker + "\n")
	}
}

// renderFooter appends the statistics block after the tree body.
func (renderer *Renderer) renderFooter(reportBuffer *bytes.Buffer, statistics *types.Statistics) {
	reportBuffer.WriteString("\n")
	reportBuffer.WriteString(fmt.Sprintf(footerDirectoriesFmt, statistics.Directories))
	reportBuffer.WriteString(fmt.Sprintf(footerFilesFmt, statistics.Files))
	reportBuffer.WriteString(fmt.Sprintf(footerTotalSizeFmt, utils.FormatByteCount(statistics.TotalBytes)))
	if renderer.Configuration.SearchActive() {
		reportBuffer.WriteString(fmt.Sprintf(footerSearchHitsFmt, statistics.MatchingFiles, statistics.TotalMatches))
	}
}

// renderSummary appends the console statistics block to the preview.
func (renderer *Renderer) renderSummary(previewBuffer *bytes.Buffer, statistics *types.Statistics) {
	summaryRule := strings.Repeat(previewRuleMark, summaryRuleWidth)
	previewBuffer.WriteString("\n" + renderer.previewTreeColor.Sprint(summaryBannerTitle) + "\n")
	previewBuffer.WriteString(renderer.previewTreeColor.Sprint(summaryRule) + "\n")
	previewBuffer.WriteString(renderer.previewTreeColor.Sprint(fmt.Sprintf(summaryDirectoriesFormat, statistics.Directories)) + "\n")
	previewBuffer.WriteString(renderer.previewTreeColor.Sprint(fmt.Sprintf(summaryFilesFormat, statistics.Files, utils.FormatByteCount(statistics.TotalBytes))) + "\n")
	if renderer.Configuration.SearchActive() {
		previewBuffer.WriteString(renderer.previewTreeColor.Sprint(fmt.Sprintf(summarySearchHitsFormat, statistics.MatchingFiles, statistics.TotalMatches)) + "\n")
	}
}
