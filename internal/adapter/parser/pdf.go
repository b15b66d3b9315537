package parser

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"qaforge/internal/domain"
)

func (p *Parser) parsePDF(name string, content []byte) (rec domain.DocumentRecord, err error) {
	// The pdf package panics on some malformed inputs; convert those to the
	// same malformed-input error a normal parse failure produces.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: parsing PDF: %v", domain.ErrMalformedInput, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return domain.DocumentRecord{}, fmt.Errorf("%w: parsing PDF: %v", domain.ErrMalformedInput, err)
	}

	numPages := reader.NumPage()
	var text strings.Builder

	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages; page order of the rest is preserved.
			continue
		}
		text.WriteString(pageText)
		text.WriteString("\n")
	}

	extracted := strings.TrimSpace(text.String())

	return domain.DocumentRecord{
		Text: extracted,
		Meta: domain.DocMeta{
			Filename:   filepath.Base(name),
			FileType:   "pdf",
			SourcePath: name,
			NumPages:   numPages,
		},
		RawContent: extracted,
	}, nil
}
