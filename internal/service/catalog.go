package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloo-solutions/kbdocs/internal/domain"
	"github.com/cloo-solutions/kbdocs/internal/pagination"
	"github.com/cloo-solutions/kbdocs/internal/ragflow"
	"github.com/rs/zerolog"
)

// DatasetAPIInterface defines the RAGFlow calls the catalog depends on
type DatasetAPIInterface interface {
	ListDatasets(ctx context.Context) ([]domain.KnowledgeBase, error)
	ListDocuments(ctx context.Context, kbID string, page, pageSize int) (*ragflow.DocumentPage, error)
}

// KnowledgeBaseListing is the outcome of listing knowledge bases.
type KnowledgeBaseListing = pagination.Result[domain.KnowledgeBase]

// DocumentListing is the outcome of paging through a knowledge base's documents.
type DocumentListing = pagination.Result[domain.Document]

// Catalog resolves knowledge bases and collects their documents.
// Listing failures never propagate as errors; they are reported and recorded on the result.
type Catalog struct {
	api    DatasetAPIInterface
	out    io.Writer
	logger zerolog.Logger
}

// NewCatalog creates a Catalog. Progress lines are written to out.
func NewCatalog(api DatasetAPIInterface, out io.Writer, logger zerolog.Logger) *Catalog {
	if out == nil {
		out = io.Discard
	}
	return &Catalog{api: api, out: out, logger: logger}
}

// ListKnowledgeBases makes a single call and degrades to an empty listing on any failure.
func (c *Catalog) ListKnowledgeBases(ctx context.Context) KnowledgeBaseListing {
	kbs, err := c.api.ListDatasets(ctx)
	if err != nil {
		c.report("failed to list knowledge bases", err)
		return KnowledgeBaseListing{Pages: 1, Err: err}
	}
	return KnowledgeBaseListing{Items: kbs, Pages: 1}
}

// FindByName returns the first knowledge base, in server order, whose name contains name
// case-insensitively. It returns (nil, nil) when nothing matches and (nil, err) when the
// listing itself failed.
func (c *Catalog) FindByName(ctx context.Context, name string) (*domain.KnowledgeBase, error) {
	listing := c.ListKnowledgeBases(ctx)
	if listing.Err != nil {
		return nil, listing.Err
	}

	for _, kb := range listing.Items {
		if kb.NameContains(name) {
			match := kb
			return &match, nil
		}
	}
	return nil, nil
}

// ListDocuments pages through every document of a knowledge base.
// On failure the documents fetched so far are returned together with the error.
func (c *Catalog) ListDocuments(ctx context.Context, kbID string, pageSize int) DocumentListing {
	fmt.Fprintf(c.out, "Fetching documents of knowledge base '%s'...\n", kbID)

	fetch := func(ctx context.Context, page, size int) ([]domain.Document, error) {
		docPage, err := c.api.ListDocuments(ctx, kbID, page, size)
		if err != nil {
			return nil, err
		}
		c.logger.Debug().Str("kb_id", kbID).Int("page", page).Int("docs", len(docPage.Docs)).Int("total", docPage.Total).Msg("fetched document page")
		return docPage.Docs, nil
	}

	res := pagination.Collect(ctx, pageSize, fetch, func(page, accumulated int) {
		fmt.Fprintf(c.out, "  fetched %d documents...\n", accumulated)
	})

	if res.Err != nil {
		c.report("failed to fetch documents", res.Err)
		c.logger.Warn().Err(res.Err).Str("kb_id", kbID).Int("pages", res.Pages).Int("docs", len(res.Items)).Msg("document listing stopped early")
	}

	fmt.Fprintf(c.out, "Fetched %d documents in total\n\n", len(res.Items))
	return res
}

func (c *Catalog) report(what string, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	if domain.KindOf(err) == domain.KindApplication {
		fmt.Fprintf(c.out, "Warning: API returned an error: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "Error: %s: %v\n", what, err)
}
