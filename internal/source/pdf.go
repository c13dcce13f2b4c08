package source

import (
	"bytes"
	"io"

	"github.com/ledongthuc/pdf"
)

// ExtractPDFText reads all of r and extracts the PDF's plain text, page by
// page in document order. Scanned PDFs without a text layer yield an empty
// string and no error.
func ExtractPDFText(r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if len(b) == 0 {
		return "", nil
	}

	reader, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return "", err
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	out, err := io.ReadAll(plain)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
