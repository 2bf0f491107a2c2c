package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// CacheKey identifies one stored Notion response.
type CacheKey struct {
	// Endpoint is the API path, e.g. "/v1/databases/{id}/query"
	Endpoint string

	// Cursor is the start cursor of the page, empty for the first page
	Cursor string

	// Body is the request body; only its hash enters the key
	Body []byte
}

// String generates a deterministic key.
// Format: notion:endpoint[:cursor=c][:body=sha256-prefix]
//
// Example:
//
//	notion:v1/databases/abc/query:cursor=xyz:body=1f2e3d4c5b6a7988
func (k CacheKey) String() string {
	parts := []string{"notion"}

	endpoint := strings.Trim(k.Endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	if k.Cursor != "" {
		parts = append(parts, "cursor="+k.Cursor)
	}

	if len(k.Body) > 0 {
		sum := sha256.Sum256(k.Body)
		parts = append(parts, "body="+hex.EncodeToString(sum[:8]))
	}

	return strings.Join(parts, ":")
}
