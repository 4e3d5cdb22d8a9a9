package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Format is the normalized file format of an upload.
type Format string

const (
	FormatPDF   Format = "pdf"
	FormatText  Format = "text"
	FormatXML   Format = "xml"
	FormatCSV   Format = "csv"
	FormatXLSX  Format = "xlsx"
	FormatXLS   Format = "xls"
	FormatOther Format = ""
)

const (
	mimePDF  = "application/pdf"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeXLS  = "application/vnd.ms-excel"
)

// MaxTextLen caps extracted text kept on an upload record, in runes.
const MaxTextLen = 50000

var ErrUnsupported = errors.New("unsupported file format")

var byMime = map[string]Format{
	mimePDF:           FormatPDF,
	"text/plain":      FormatText,
	"text/xml":        FormatXML,
	"application/xml": FormatXML,
	"text/csv":        FormatCSV,
	mimeXLSX:          FormatXLSX,
	mimeXLS:           FormatXLS,
}

var byExt = map[string]Format{
	".pdf":  FormatPDF,
	".txt":  FormatText,
	".xml":  FormatXML,
	".csv":  FormatCSV,
	".xlsx": FormatXLSX,
	".xls":  FormatXLS,
}

// Detect resolves the format from the content type, falling back to the
// file extension when the type is absent or not on the allow-list.
func Detect(contentType, fileName string) Format {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if f, ok := byMime[clean]; ok {
		return f
	}
	if f, ok := byExt[strings.ToLower(filepath.Ext(fileName))]; ok {
		return f
	}
	return FormatOther
}

// Allowed reports whether an upload with this content type or name may be stored.
func Allowed(contentType, fileName string) bool {
	return Detect(contentType, fileName) != FormatOther
}

// Tabular reports whether f is summarized rather than read as text.
func (f Format) Tabular() bool {
	return f == FormatCSV || f == FormatXLSX || f == FormatXLS
}

// Text extracts readable text from an in-memory payload. Spreadsheets and CSV
// files come back as a structural summary.
func Text(ctx context.Context, data []byte, contentType, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var (
		text string
		err  error
	)
	switch f := Detect(contentType, fileName); f {
	case FormatPDF:
		text, err = extractPDF(data)
	case FormatText, FormatXML:
		text = strings.ToValidUTF8(string(data), "")
	case FormatCSV, FormatXLSX, FormatXLS:
		text, err = Summarize(f, data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, contentType)
	}
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", fileName, err)
	}
	return Truncate(text, MaxTextLen), nil
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func extractPDF(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}
