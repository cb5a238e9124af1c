package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

type ledongthucReader struct {
	maxPages int
}

// PageItems treats each non-blank line of a page's plain text as one item.
func (r ledongthucReader) PageItems(content []byte) (pages [][]string, err error) {
	// the pdf package panics on some malformed content streams
	defer func() {
		if rec := recover(); rec != nil {
			pages, err = nil, fmt.Errorf("pdf decode panic: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	n := reader.NumPage()
	if r.maxPages > 0 && n > r.maxPages {
		n = r.maxPages
	}
	pages = make([][]string, 0, n)
	for i := 1; i <= n; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, nil)
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, splitItems(text))
	}
	return pages, nil
}

func splitItems(text string) []string {
	var items []string
	for _, line := range strings.Split(text, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			items = append(items, s)
		}
	}
	return items
}
