package extract

import (
	"bytes"

	"code.sajari.com/docconv"
)

// docconvReader returns docconv's raw text unchanged.
type docconvReader struct{}

func (docconvReader) RawText(content []byte) (string, error) {
	text, _, err := docconv.ConvertDocx(bytes.NewReader(content))
	if err != nil {
		return "", err
	}
	return text, nil
}
