// Package report persists the assembled tree report.
package report

import (
	"os"

	"github.com/mkovalev/dirtree/internal/types"
)

// reportFilePermissions is the mode used for freshly created report files.
const reportFilePermissions = 0o644

// Writer writes one report to the configured destination, overwriting any
// existing file.
type Writer struct {
	Configuration types.RunConfig
}

// NewWriter constructs a Writer for the resolved run configuration.
func NewWriter(configuration types.RunConfig) *Writer {
	return &Writer{Configuration: configuration}
}

// WriteReport writes the UTF-8 report text to the output path. A failed write
// surfaces as *types.WriteError and fails the run.
func (writer *Writer) WriteReport(reportText string) error {
	writeFileError := os.WriteFile(writer.Configuration.OutputPath, []byte(reportText), reportFilePermissions)
	if writeFileError != nil {
		return &types.WriteError{Path: writer.Configuration.OutputPath, Cause: writeFileError}
	}
	return nil
}
