package ingest

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dslipak/pdf"
)

const pageExtractTimeout = 10 * time.Second

func loadPDF(path string) (string, error) {
	f, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var b strings.Builder
	numPages := f.NumPage()
	extracted := 0
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := protectExtract(page)
		if err != nil {
			//a single malformed page should not sink the document
			continue
		}

		if extracted > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(content)
		extracted++
	}

	if numPages > 0 && extracted == 0 {
		return "", errors.New("no extractable pages in pdf")
	}
	return b.String(), nil
}

// protectExtract guards against pathological pages that hang the parser.
func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(pageExtractTimeout):
		return "", errors.New("page extraction timeout")
	}
}
