package domain

import "strings"

// KnowledgeBase is a server-side named collection of documents (a RAGFlow dataset).
type KnowledgeBase struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	DocumentCount int    `json:"document_count"`
	ChunkCount    int    `json:"chunk_count"`
}

// NameContains reports whether the knowledge base name contains query, ignoring case.
func (kb KnowledgeBase) NameContains(query string) bool {
	return strings.Contains(strings.ToLower(kb.Name), strings.ToLower(query))
}
