package ragflow

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/cloo-solutions/kbdocs/internal/domain"
)

// DocumentPage is one page of the documents-by-dataset listing.
type DocumentPage struct {
	Docs  []domain.Document `json:"docs"`
	Total int               `json:"total,omitempty"`
}

// ListDatasets returns every knowledge base visible to the API key, in server order.
func (c *Client) ListDatasets(ctx context.Context) ([]domain.KnowledgeBase, error) {
	env, err := c.Get(ctx, "/datasets", nil)
	if err != nil {
		return nil, err
	}
	if err := env.Err(); err != nil {
		return nil, err
	}

	var kbs []domain.KnowledgeBase
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &kbs); err != nil {
			return nil, domain.NewTransportError("failed to parse datasets", 0, err)
		}
	}
	return kbs, nil
}

// ListDocuments fetches a single page of documents for a knowledge base. Pages start at 1.
func (c *Client) ListDocuments(ctx context.Context, kbID string, page, pageSize int) (*DocumentPage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("page_size", strconv.Itoa(pageSize))

	env, err := c.Get(ctx, "/datasets/"+url.PathEscape(kbID)+"/documents", query)
	if err != nil {
		return nil, err
	}
	if err := env.Err(); err != nil {
		return nil, err
	}

	var docPage DocumentPage
	if len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, &docPage); err != nil {
			return nil, domain.NewTransportError("failed to parse documents", 0, err)
		}
	}
	return &docPage, nil
}
