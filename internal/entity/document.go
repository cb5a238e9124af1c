package entity

import "github.com/joseph-ayodele/resume-extractor/constants"

// Document is one input unit: a standalone upload or one archive member.
type Document struct {
	Name      string
	Content   []byte
	MediaType constants.MediaType
	// Text, when set, is already-extracted text and the extraction stage is skipped.
	Text *string
}

// HasText reports whether the document carries pre-extracted text.
func (d Document) HasText() bool {
	return d.Text != nil
}
