package report

import "github.com/atotto/clipboard"

// Copier copies textual data to the system clipboard.
type Copier interface {
	Copy(text string) error
}

// ClipboardService implements Copier using github.com/atotto/clipboard.
type ClipboardService struct{}

// NewClipboardService constructs the system clipboard implementation.
func NewClipboardService() *ClipboardService {
	return &ClipboardService{}
}

// Copy writes text to the system clipboard.
func (service *ClipboardService) Copy(text string) error {
	return clipboard.WriteAll(text)
}

var _ Copier = (*ClipboardService)(nil)
