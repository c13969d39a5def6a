package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cloo-solutions/kbdocs/internal/domain"
)

// Format selects how documents are rendered.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatTXT   Format = "txt"
)

// ParseFormat validates a --format value. Only the terminal formats are accepted.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatCSV:
		return f, nil
	case "":
		return FormatTable, nil
	}
	return "", domain.NewValidationError(fmt.Sprintf("invalid format %q (choose from table, json, csv)", s))
}

// FileFormat maps a terminal format to the format used when saving: table becomes txt.
func (f Format) FileFormat() Format {
	if f == FormatTable || f == "" {
		return FormatTXT
	}
	return f
}

const (
	notAvailable = "N/A"
	tableWidth   = 120
	statusWidth  = 12

	csvHeader = "document_id,name,chunk_count,status,size"
)

// NoDocumentsNotice is printed instead of an empty listing.
const NoDocumentsNotice = "Warning: no documents in this knowledge base"

var statusIcons = map[domain.DocumentStatus]string{
	domain.DocumentStatusSuccess: "✅",
	domain.DocumentStatusRunning: "🔄",
	domain.DocumentStatusUnstart: "⏸️",
	domain.DocumentStatusFail:    "❌",
}

// StatusIcon returns the icon for an exact status match, or a neutral icon for anything else.
func StatusIcon(status domain.DocumentStatus) string {
	if icon, ok := statusIcons[status]; ok {
		return icon
	}
	return "⚪"
}

// DocumentTable is the column layout of the document listing.
func DocumentTable() *Table {
	return NewTable(
		Column{Header: "No.", Width: 6},
		Column{Header: "Document ID", Width: 30, MaxLen: 30},
		Column{Header: "Name", Width: 40, MaxLen: 40},
		Column{Header: "Chunks", Width: 10},
		Column{Header: "Status", Width: 14},
		Column{Header: "Size", Width: 12},
	)
}

// Documents writes docs to w. brief prints one name per line whatever the format.
func Documents(w io.Writer, docs []domain.Document, format Format, brief bool) error {
	if len(docs) == 0 {
		_, err := fmt.Fprintln(w, NoDocumentsNotice)
		return err
	}

	if brief {
		for _, doc := range docs {
			if _, err := fmt.Fprintln(w, orNA(doc.Name)); err != nil {
				return err
			}
		}
		return nil
	}

	switch format {
	case FormatJSON:
		return writeJSON(w, docs)
	case FormatCSV:
		return writeCSV(w, docs)
	default:
		return writeDocumentTable(w, docs)
	}
}

func writeDocumentTable(w io.Writer, docs []domain.Document) error {
	table := DocumentTable()
	rule := Rule("=", tableWidth)

	var b strings.Builder
	b.WriteString("\n" + rule + "\n")
	b.WriteString(table.Header() + "\n")
	b.WriteString(rule + "\n")
	for i, doc := range docs {
		b.WriteString(table.Row(
			strconv.Itoa(i+1),
			orNA(doc.ID),
			orNA(doc.Name),
			strconv.Itoa(doc.ChunkCount),
			StatusIcon(doc.Status)+" "+Pad(orNA(string(doc.Status)), statusWidth),
			doc.FormatSize("-"),
		) + "\n")
	}
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "\nTotal: %d documents\n\n", len(docs))

	_, err := io.WriteString(w, b.String())
	return err
}

func writeJSON(w io.Writer, docs []domain.Document) error {
	if docs == nil {
		docs = []domain.Document{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(docs)
}

func writeCSV(w io.Writer, docs []domain.Document) error {
	if _, err := fmt.Fprintln(w, csvHeader); err != nil {
		return err
	}
	for _, doc := range docs {
		if _, err := fmt.Fprintln(w, csvRow(doc)); err != nil {
			return err
		}
	}
	return nil
}

// csvRow always quotes id, name and size, which encoding/csv cannot be told to do.
func csvRow(doc domain.Document) string {
	return fmt.Sprintf(`%s,%s,%d,%s,%s`,
		csvQuote(orNA(doc.ID)),
		csvQuote(orNA(doc.Name)),
		doc.ChunkCount,
		orNA(string(doc.Status)),
		csvQuote(doc.FormatSize(notAvailable)),
	)
}

func csvQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}
