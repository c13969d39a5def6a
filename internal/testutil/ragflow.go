// Package testutil provides a scripted fake RAGFlow API for tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

const (
	// APIPrefix is where the fake mounts its routes, matching a real RAGFlow deployment.
	APIPrefix = "/api/v1"
	// APIKey is the bearer token the fake accepts.
	APIKey = "ragflow-test-key"
)

// FakePage scripts one response of the documents listing.
type FakePage struct {
	Docs []map[string]interface{}
	// Code and Message produce an application error envelope when Code is non-zero.
	Code    int
	Message string
	// HTTPStatus, when set, replaces the response with a bare error status.
	HTTPStatus int
	// Delay holds the response back, or until the client goes away.
	Delay time.Duration
}

// FakeDataset is a knowledge base served by the fake together with its document pages.
type FakeDataset struct {
	ID            string
	Name          string
	DocumentCount int
	ChunkCount    int
	Pages         []FakePage
}

// RecordedRequest is one request observed by the fake.
type RecordedRequest struct {
	Method        string
	Path          string
	Page          int
	PageSize      int
	Authorization string
	ContentType   string
	RequestID     string
}

// FakeRAGFlow is an httptest server speaking the RAGFlow dataset/document API.
type FakeRAGFlow struct {
	server *httptest.Server

	mu       sync.Mutex
	datasets []FakeDataset
	requests []RecordedRequest

	// DatasetsCode and DatasetsStatus script failures of GET /datasets.
	DatasetsCode    int
	DatasetsMessage string
	DatasetsStatus  int
}

// NewFakeRAGFlow starts a fake serving datasets; it is closed when the test ends.
func NewFakeRAGFlow(t *testing.T, datasets ...FakeDataset) *FakeRAGFlow {
	t.Helper()

	f := &FakeRAGFlow{datasets: datasets}

	r := chi.NewRouter()
	r.Route(APIPrefix, func(r chi.Router) {
		r.Use(f.record)
		r.Use(requireBearer)
		r.Get("/datasets", f.handleDatasets)
		r.Get("/datasets/{datasetID}/documents", f.handleDocuments)
	})

	f.server = httptest.NewServer(r)
	t.Cleanup(f.server.Close)
	return f
}

// URL returns the API base URL, including the /api/v1 prefix.
func (f *FakeRAGFlow) URL() string {
	return f.server.URL + APIPrefix
}

// Requests returns a copy of every request seen so far.
func (f *FakeRAGFlow) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]RecordedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

// DocumentRequests counts the document page requests made for a dataset.
func (f *FakeRAGFlow) DocumentRequests(datasetID string) int {
	path := APIPrefix + "/datasets/" + datasetID + "/documents"
	n := 0
	for _, req := range f.Requests() {
		if req.Path == path {
			n++
		}
	}
	return n
}

func (f *FakeRAGFlow) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

		f.mu.Lock()
		f.requests = append(f.requests, RecordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			Page:          page,
			PageSize:      pageSize,
			Authorization: r.Header.Get("Authorization"),
			ContentType:   r.Header.Get("Content-Type"),
			RequestID:     r.Header.Get("X-Request-ID"),
		})
		f.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+APIKey {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"code":    109,
				"message": "Authentication error: API key is invalid!",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeRAGFlow) handleDatasets(w http.ResponseWriter, r *http.Request) {
	if f.DatasetsStatus != 0 {
		http.Error(w, http.StatusText(f.DatasetsStatus), f.DatasetsStatus)
		return
	}
	if f.DatasetsCode != 0 {
		writeJSON(w, http.StatusOK, map[string]interface{}{"code": f.DatasetsCode, "message": f.DatasetsMessage})
		return
	}

	data := make([]map[string]interface{}, 0, len(f.datasets))
	for _, ds := range f.datasets {
		data = append(data, map[string]interface{}{
			"id":             ds.ID,
			"name":           ds.Name,
			"document_count": ds.DocumentCount,
			"chunk_count":    ds.ChunkCount,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"code": 0, "data": data})
}

func (f *FakeRAGFlow) handleDocuments(w http.ResponseWriter, r *http.Request) {
	datasetID := chi.URLParam(r, "datasetID")

	var ds *FakeDataset
	for i := range f.datasets {
		if f.datasets[i].ID == datasetID {
			ds = &f.datasets[i]
			break
		}
	}
	if ds == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"code":    102,
			"message": fmt.Sprintf("You don't own the dataset %s.", datasetID),
		})
		return
	}

	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	docs := []map[string]interface{}{}
	if page <= len(ds.Pages) {
		p := ds.Pages[page-1]
		if p.Delay > 0 {
			select {
			case <-time.After(p.Delay):
			case <-r.Context().Done():
				return
			}
		}
		if p.HTTPStatus != 0 {
			http.Error(w, http.StatusText(p.HTTPStatus), p.HTTPStatus)
			return
		}
		if p.Code != 0 {
			writeJSON(w, http.StatusOK, map[string]interface{}{"code": p.Code, "message": p.Message})
			return
		}
		if p.Docs != nil {
			docs = p.Docs
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"code": 0,
		"data": map[string]interface{}{"docs": docs, "total": countDocs(ds.Pages)},
	})
}

// PagesOfSize builds pages holding the given number of generated documents each.
func PagesOfSize(sizes ...int) []FakePage {
	pages := make([]FakePage, 0, len(sizes))
	for p, size := range sizes {
		docs := make([]map[string]interface{}, 0, size)
		for i := 0; i < size; i++ {
			docs = append(docs, Doc(fmt.Sprintf("doc-%d-%d", p+1, i), fmt.Sprintf("file-%d-%d.pdf", p+1, i), "SUCCESS", 1024))
		}
		pages = append(pages, FakePage{Docs: docs})
	}
	return pages
}

// Doc builds a document record the way RAGFlow returns it.
func Doc(id, name, status string, size int64) map[string]interface{} {
	return map[string]interface{}{
		"id":          id,
		"name":        name,
		"chunk_count": 1,
		"status":      status,
		"size":        size,
		"run":         status,
	}
}

func countDocs(pages []FakePage) int {
	n := 0
	for _, p := range pages {
		n += len(p.Docs)
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
