package appwrite

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// DocumentList is a page of documents from a collection query.
// Documents stay raw so typed stores can decode into their own models.
type DocumentList struct {
	Total     int64             `json:"total"`
	Documents []json.RawMessage `json:"documents"`
}

// QueryEqual builds an equality filter on a single attribute, the only
// query shape this application uses.
func QueryEqual(attribute, value string) string {
	encoded, _ := json.Marshal([]string{value})
	return fmt.Sprintf("equal(%q, %s)", attribute, encoded)
}

// CreateDocument stores a document and decodes the created record into out.
func (c *Client) CreateDocument(ctx context.Context, databaseID, collectionID, documentID string, data, out any) error {
	path := fmt.Sprintf("/databases/%s/collections/%s/documents", databaseID, collectionID)
	body := map[string]any{
		"documentId": documentID,
		"data":       data,
	}
	return c.do(ctx, "POST", path, body, out)
}

// ListDocuments runs the given queries against a collection.
func (c *Client) ListDocuments(ctx context.Context, databaseID, collectionID string, queries []string) (*DocumentList, error) {
	path := fmt.Sprintf("/databases/%s/collections/%s/documents", databaseID, collectionID)

	params := url.Values{}
	for _, q := range queries {
		params.Add("queries[]", q)
	}
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var list DocumentList
	if err := c.do(ctx, "GET", path, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}
