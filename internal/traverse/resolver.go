package traverse

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mkovalev/dirtree/internal/types"
)

const (
	defaultTargetFolder = "."
	// errorAbsolutePathFormat reports failure to resolve an absolute path.
	errorAbsolutePathFormat = "getting absolute path for '%s': %w"
	// errorStatFormat reports failure to retrieve file statistics.
	errorStatFormat = "stat failed for '%s': %w"
)

// ResolveTargetDirectory converts the user-supplied folder argument into an
// absolute, cleaned path and validates that it names an existing directory.
// An empty argument resolves to the current working directory.
func ResolveTargetDirectory(targetFolder string) (string, error) {
	if targetFolder == "" {
		targetFolder = defaultTargetFolder
	}
	absolutePath, absolutePathError := filepath.Abs(targetFolder)
	if absolutePathError != nil {
		return "", fmt.Errorf(errorAbsolutePathFormat, targetFolder, absolutePathError)
	}
	cleanPath := filepath.Clean(absolutePath)

	fileInformation, statError := os.Stat(cleanPath)
	if statError != nil {
		if os.IsNotExist(statError) {
			return "", &types.NotFoundError{Path: cleanPath}
		}
		return "", fmt.Errorf(errorStatFormat, cleanPath, statError)
	}
	if !fileInformation.IsDir() {
		return "", &types.NotADirectoryError{Path: cleanPath}
	}
	return cleanPath, nil
}
