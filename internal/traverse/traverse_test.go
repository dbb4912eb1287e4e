package traverse_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mkovalev/dirtree/internal/traverse"
	"github.com/mkovalev/dirtree/internal/types"
)

const (
	alphaDirectoryName  = "alpha"
	betaDirectoryName   = "beta"
	hiddenDirectoryName = ".secrets"
	hiddenFileName      = ".hidden.txt"
	firstFileName       = "first.txt"
	secondFileName      = "second.txt"
	nestedFileName      = "nested.txt"
	outputFileName      = "structure.txt"
	cycleLinkName       = "loop"
)

// buildFixtureTree lays out the directory structure shared by the walker tests:
//
//	root/
//	├── alpha/
//	│   └── nested.txt
//	├── beta/
//	├── .secrets/
//	├── .hidden.txt
//	├── first.txt
//	└── second.txt
func buildFixtureTree(testingHandle *testing.T) string {
	testingHandle.Helper()
	rootDirectory := testingHandle.TempDir()
	for _, directoryName := range []string{alphaDirectoryName, betaDirectoryName, hiddenDirectoryName} {
		if makeDirError := os.Mkdir(filepath.Join(rootDirectory, directoryName), 0o755); makeDirError != nil {
			testingHandle.Fatalf("mkdir %s: %v", directoryName, makeDirError)
		}
	}
	fixtureFiles := map[string]string{
		filepath.Join(rootDirectory, firstFileName):                     "one",
		filepath.Join(rootDirectory, secondFileName):                    "two",
		filepath.Join(rootDirectory, hiddenFileName):                    "hidden",
		filepath.Join(rootDirectory, alphaDirectoryName, nestedFileName): "nested",
	}
	for filePath, fileContent := range fixtureFiles {
		if writeError := os.WriteFile(filePath, []byte(fileContent), 0o644); writeError != nil {
			testingHandle.Fatalf("write %s: %v", filePath, writeError)
		}
	}
	return rootDirectory
}

// walkFixture runs a walker over the fixture and returns the emitted entries.
func walkFixture(testingHandle *testing.T, configuration types.RunConfig) ([]types.Entry, *types.Statistics) {
	testingHandle.Helper()
	statistics := &types.Statistics{}
	walker := &traverse.Walker{Configuration: configuration, Statistics: statistics}
	entries, _, walkError := walker.Walk()
	if walkError != nil {
		testingHandle.Fatalf("Walk error: %v", walkError)
	}
	return entries, statistics
}

// entryNames flattens the emitted entry names in order.
func entryNames(entries []types.Entry) []string {
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name)
	}
	return names
}

// TestWalkOrderingAndExactlyOnce verifies deterministic directories-first
// ordering and that every non-excluded entry appears exactly once.
func TestWalkOrderingAndExactlyOnce(testingHandle *testing.T) {
	rootDirectory := buildFixtureTree(testingHandle)
	entries, _ := walkFixture(testingHandle, types.RunConfig{TargetPath: rootDirectory})

	expectedNames := []string{alphaDirectoryName, nestedFileName, betaDirectoryName, firstFileName, secondFileName}
	actualNames := entryNames(entries)
	if len(actualNames) != len(expectedNames) {
		testingHandle.Fatalf("expected %d entries, got %d (%v)", len(expectedNames), len(actualNames), actualNames)
	}
	for nameIndex, expectedName := range expectedNames {
		if actualNames[nameIndex] != expectedName {
			testingHandle.Fatalf("entry %d: expected %s, got %s", nameIndex, expectedName, actualNames[nameIndex])
		}
	}

	seenPaths := make(map[string]int)
	for _, entry := range entries {
		seenPaths[entry.Path]++
	}
	for entryPath, occurrences := range seenPaths {
		if occurrences != 1 {
			testingHandle.Fatalf("entry %s emitted %d times", entryPath, occurrences)
		}
	}
}

// TestWalkDepthInvariant verifies that each entry is exactly one level deeper
// than its parent directory and that sibling flags mark the final entry of
// each directory.
func TestWalkDepthInvariant(testingHandle *testing.T) {
	rootDirectory := buildFixtureTree(testingHandle)
	entries, _ := walkFixture(testingHandle, types.RunConfig{TargetPath: rootDirectory})

	depthByPath := map[string]int{rootDirectory: 0}
	for _, entry := range entries {
		depthByPath[entry.Path] = entry.Depth
		parentDepth, parentKnown := depthByPath[filepath.Dir(entry.Path)]
		if !parentKnown {
			testingHandle.Fatalf("entry %s emitted before its parent", entry.Path)
		}
		if entry.Depth != parentDepth+1 {
			testingHandle.Fatalf("entry %s: depth %d, parent depth %d", entry.Path, entry.Depth, parentDepth)
		}
	}

	lastEntry := entries[len(entries)-1]
	if lastEntry.Name != secondFileName || !lastEntry.IsLastSibling {
		testingHandle.Fatalf("expected %s as last sibling, got %+v", secondFileName, lastEntry)
	}
}

// TestWalkHiddenFiltering verifies hidden entries toggle with the
// include-hidden setting and with nothing else.
func TestWalkHiddenFiltering(testingHandle *testing.T) {
	rootDirectory := buildFixtureTree(testingHandle)

	withoutHidden, _ := walkFixture(testingHandle, types.RunConfig{TargetPath: rootDirectory})
	for _, entry := range withoutHidden {
		if entry.Name == hiddenFileName || entry.Name == hiddenDirectoryName {
			testingHandle.Fatalf("hidden entry %s emitted without include-hidden", entry.Name)
		}
	}

	withHidden, _ := walkFixture(testingHandle, types.RunConfig{TargetPath: rootDirectory, IncludeHidden: true})
	if len(withHidden) != len(withoutHidden)+2 {
		testingHandle.Fatalf("expected %d entries with hidden included, got %d", len(withoutHidden)+2, len(withHidden))
	}
}

// TestWalkDepthLimit verifies that no entry exceeds the configured depth and
// that directories at the limit appear unexpanded.
func TestWalkDepthLimit(testingHandle *testing.T) {
	rootDirectory := buildFixtureTree(testingHandle)
	entries, _ := walkFixture(testingHandle, types.RunConfig{TargetPath: rootDirectory, MaxDepth: 1})

	for _, entry := range entries {
		if entry.Depth > 1 {
			testingHandle.Fatalf("entry %s exceeds depth limit: %d", entry.Name, entry.Depth)
		}
		if entry.Name == nestedFileName {
			testingHandle.Fatalf("nested file emitted despite depth limit")
		}
	}
	foundAlpha := false
	for _, entry := range entries {
		if entry.Name == alphaDirectoryName && entry.Kind == types.EntryKindDirectory {
			foundAlpha = true
		}
	}
	if !foundAlpha {
		testingHandle.Fatalf("directory at the depth limit missing from entries")
	}
}

// TestWalkSelfExclusion verifies a pre-existing output file never appears as
// an entry.
func TestWalkSelfExclusion(testingHandle *testing.T) {
	rootDirectory := buildFixtureTree(testingHandle)
	outputPath := filepath.Join(rootDirectory, outputFileName)
	if writeError := os.WriteFile(outputPath, []byte("stale report"), 0o644); writeError != nil {
		testingHandle.Fatalf("write output fixture: %v", writeError)
	}

	entries, _ := walkFixture(testingHandle, types.RunConfig{TargetPath: rootDirectory, OutputPath: outputPath})
	for _, entry := range entries {
		if entry.Name == outputFileName {
			testingHandle.Fatalf("output file emitted as entry")
		}
	}
}

// TestWalkSymlinkCycle verifies a directory symlink pointing at an ancestor
// yields exactly one annotated leaf and terminates.
func TestWalkSymlinkCycle(testingHandle *testing.T) {
	rootDirectory := buildFixtureTree(testingHandle)
	cycleLinkPath := filepath.Join(rootDirectory, alphaDirectoryName, cycleLinkName)
	if symlinkError := os.Symlink(rootDirectory, cycleLinkPath); symlinkError != nil {
		testingHandle.Skipf("symlinks unavailable: %v", symlinkError)
	}

	entries, _ := walkFixture(testingHandle, types.RunConfig{TargetPath: rootDirectory})

	cyclicCount := 0
	for _, entry := range entries {
		if entry.Name == cycleLinkName {
			cyclicCount++
			if !entry.CyclicSymlink {
				testingHandle.Fatalf("cycle link not marked cyclic: %+v", entry)
			}
			if entry.Kind != types.EntryKindDirectory {
				testingHandle.Fatalf("cycle link kind: %s", entry.Kind)
			}
		}
	}
	if cyclicCount != 1 {
		testingHandle.Fatalf("expected exactly one cyclic entry, got %d", cyclicCount)
	}
	// A bounded walk of this fixture stays small; a runaway recursion would
	// never get here, but guard the emitted count regardless.
	if len(entries) > 32 {
		testingHandle.Fatalf("unexpected entry explosion: %d entries", len(entries))
	}
}

// TestWalkStatistics verifies counter totals for a known fixture: two
// directories and three files of 100, 2048, and 1048576 bytes.
func TestWalkStatistics(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	nestedDirectory := filepath.Join(rootDirectory, alphaDirectoryName)
	deeperDirectory := filepath.Join(nestedDirectory, betaDirectoryName)
	if makeDirError := os.MkdirAll(deeperDirectory, 0o755); makeDirError != nil {
		testingHandle.Fatalf("mkdir: %v", makeDirError)
	}
	sizedFiles := map[string]int{
		filepath.Join(rootDirectory, firstFileName):    100,
		filepath.Join(nestedDirectory, secondFileName): 2048,
		filepath.Join(deeperDirectory, nestedFileName): 1048576,
	}
	for filePath, fileSize := range sizedFiles {
		if writeError := os.WriteFile(filePath, make([]byte, fileSize), 0o644); writeError != nil {
			testingHandle.Fatalf("write %s: %v", filePath, writeError)
		}
	}

	_, statistics := walkFixture(testingHandle, types.RunConfig{TargetPath: rootDirectory})
	if statistics.Directories != 2 {
		testingHandle.Fatalf("expected 2 directories, got %d", statistics.Directories)
	}
	if statistics.Files != 3 {
		testingHandle.Fatalf("expected 3 files, got %d", statistics.Files)
	}
	if statistics.TotalBytes != 1050724 {
		testingHandle.Fatalf("expected 1050724 total bytes, got %d", statistics.TotalBytes)
	}
}

// TestWalkInaccessibleDirectory verifies an unreadable directory is emitted
// with the inaccessible marker while later siblings stay fully listed.
func TestWalkInaccessibleDirectory(testingHandle *testing.T) {
	if os.Geteuid() == 0 {
		testingHandle.Skip("directory permissions are not enforced for root")
	}
	rootDirectory := buildFixtureTree(testingHandle)
	lockedDirectory := filepath.Join(rootDirectory, alphaDirectoryName)
	if chmodError := os.Chmod(lockedDirectory, 0o000); chmodError != nil {
		testingHandle.Fatalf("chmod: %v", chmodError)
	}
	testingHandle.Cleanup(func() { _ = os.Chmod(lockedDirectory, 0o755) })

	entries, _ := walkFixture(testingHandle, types.RunConfig{TargetPath: rootDirectory})

	foundLocked := false
	foundLaterSibling := false
	for _, entry := range entries {
		if entry.Name == alphaDirectoryName {
			foundLocked = true
			if !entry.Inaccessible {
				testingHandle.Fatalf("locked directory not marked inaccessible")
			}
		}
		if entry.Name == secondFileName {
			foundLaterSibling = true
		}
		if entry.Name == nestedFileName {
			testingHandle.Fatalf("child of locked directory emitted")
		}
	}
	if !foundLocked || !foundLaterSibling {
		testingHandle.Fatalf("expected locked directory and later sibling in entries")
	}
}
