package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cloo-solutions/kbdocs/internal/domain"
)

// NoKnowledgeBasesNotice is printed instead of an empty knowledge base listing.
const NoKnowledgeBasesNotice = "Warning: no knowledge bases found"

// KnowledgeBaseTable is the column layout of the knowledge base listing. Nothing is truncated.
func KnowledgeBaseTable() *Table {
	return NewTable(
		Column{Header: "No.", Width: 6},
		Column{Header: "ID", Width: 40},
		Column{Header: "Name", Width: 40},
		Column{Header: "Documents", Width: 10},
		Column{Header: "Chunks", Width: 10},
	)
}

// KnowledgeBases writes the knowledge base table to w.
func KnowledgeBases(w io.Writer, kbs []domain.KnowledgeBase) error {
	if len(kbs) == 0 {
		_, err := fmt.Fprintln(w, NoKnowledgeBasesNotice)
		return err
	}

	table := KnowledgeBaseTable()

	var b strings.Builder
	b.WriteString(table.Header() + "\n")
	b.WriteString(Rule("-", tableWidth) + "\n")
	for i, kb := range kbs {
		b.WriteString(table.Row(
			strconv.Itoa(i+1),
			orNA(kb.ID),
			orNA(kb.Name),
			strconv.Itoa(kb.DocumentCount),
			strconv.Itoa(kb.ChunkCount),
		) + "\n")
	}
	fmt.Fprintf(&b, "\nTotal: %d knowledge bases\n\n", len(kbs))

	_, err := io.WriteString(w, b.String())
	return err
}
