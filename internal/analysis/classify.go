package analysis

import (
	"strings"

	"osapio-backend/internal/extract"
)

// Kind selects the system prompt used for an upload.
type Kind string

const (
	KindDocument    Kind = "document"
	KindIDoc        Kind = "idoc"
	KindSpreadsheet Kind = "spreadsheet"
	KindDelimited   Kind = "csv"
)

const idocSniffLen = 4096

// Tabular reports whether content for k is a structural summary.
func (k Kind) Tabular() bool {
	return k == KindSpreadsheet || k == KindDelimited
}

// Classify picks the kind from the file name, and for non-tabular files
// looks for an IDoc marker in the name or the head of the content.
func Classify(filename, content string) Kind {
	switch extract.Detect("", filename) {
	case extract.FormatXLSX, extract.FormatXLS:
		return KindSpreadsheet
	case extract.FormatCSV:
		return KindDelimited
	}
	if strings.Contains(strings.ToLower(filename), "idoc") {
		return KindIDoc
	}
	head := content
	if len(head) > idocSniffLen {
		head = head[:idocSniffLen]
	}
	if strings.Contains(head, "IDOC") {
		return KindIDoc
	}
	return KindDocument
}
