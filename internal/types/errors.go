package types

import "fmt"

// NotFoundError reports that the requested target folder does not exist.
type NotFoundError struct {
	Path string
}

func (notFound *NotFoundError) Error() string {
	return fmt.Sprintf("path '%s' does not exist", notFound.Path)
}

// NotADirectoryError reports that the requested target folder exists but is
// not a directory.
type NotADirectoryError struct {
	Path string
}

func (notADirectory *NotADirectoryError) Error() string {
	return fmt.Sprintf("path '%s' is not a directory", notADirectory.Path)
}

// WriteError reports that the assembled report could not be written to the
// configured destination.
type WriteError struct {
	Path  string
	Cause error
}

func (writeFailure *WriteError) Error() string {
	return fmt.Sprintf("writing report to '%s': %v", writeFailure.Path, writeFailure.Cause)
}

// Unwrap exposes the underlying cause for errors.Is and errors.As.
func (writeFailure *WriteError) Unwrap() error {
	return writeFailure.Cause
}
