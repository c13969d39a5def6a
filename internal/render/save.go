package render

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cloo-solutions/kbdocs/internal/domain"
)

const txtTitle = "Knowledge base documents"

// Save writes every document to path in the given file format (json, csv or txt).
// A failure is returned as a file I/O error; a partially written file is left in place.
func Save(docs []domain.Document, path string, format Format) error {
	f, err := os.Create(path)
	if err != nil {
		return domain.NewFileIOError(path, err)
	}

	w := bufio.NewWriter(f)
	if err := writeFile(w, docs, format); err != nil {
		f.Close()
		return domain.NewFileIOError(path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return domain.NewFileIOError(path, err)
	}
	if err := f.Close(); err != nil {
		return domain.NewFileIOError(path, err)
	}
	return nil
}

func writeFile(w io.Writer, docs []domain.Document, format Format) error {
	switch format.FileFormat() {
	case FormatJSON:
		return writeJSON(w, docs)
	case FormatCSV:
		return writeCSV(w, docs)
	default:
		return writeTXT(w, docs)
	}
}

func writeTXT(w io.Writer, docs []domain.Document) error {
	var b strings.Builder
	b.WriteString(txtTitle + "\n")
	b.WriteString(Rule("=", 80) + "\n\n")
	for i, doc := range docs {
		fmt.Fprintf(&b, "%d. %s\n", i+1, orNA(doc.Name))
		fmt.Fprintf(&b, "   ID: %s\n", orNA(doc.ID))
		fmt.Fprintf(&b, "   Chunks: %d\n", doc.ChunkCount)
		fmt.Fprintf(&b, "   Status: %s\n", orNA(string(doc.Status)))
		fmt.Fprintf(&b, "   Size: %s\n", doc.FormatSize(notAvailable))
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}
