package cache

import (
	"strings"
	"testing"
)

func TestCacheKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  CacheKey
		want string
	}{
		{
			name: "endpoint only",
			key:  CacheKey{Endpoint: "/v1/databases/abc"},
			want: "notion:v1/databases/abc",
		},
		{
			name: "endpoint with cursor",
			key:  CacheKey{Endpoint: "/v1/blocks/b1/children", Cursor: "xyz"},
			want: "notion:v1/blocks/b1/children:cursor=xyz",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("CacheKey.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCacheKey_BodyHash(t *testing.T) {
	a := CacheKey{Endpoint: "/v1/databases/abc/query", Body: []byte(`{"page_size":100}`)}
	b := CacheKey{Endpoint: "/v1/databases/abc/query", Body: []byte(`{"page_size":50}`)}

	if a.String() == b.String() {
		t.Error("different bodies should produce different keys")
	}
	if !strings.HasPrefix(a.String(), "notion:v1/databases/abc/query:body=") {
		t.Errorf("unexpected key format %q", a.String())
	}
	if got := len(strings.TrimPrefix(a.String(), "notion:v1/databases/abc/query:body=")); got != 16 {
		t.Errorf("body hash length = %d, want 16", got)
	}
}

// TestCacheKey_Determinism ensures same input always produces same key
func TestCacheKey_Determinism(t *testing.T) {
	key := CacheKey{
		Endpoint: "/v1/databases/abc/query",
		Cursor:   "c1",
		Body:     []byte(`{"filter":{"property":"Published"}}`),
	}

	first := key.String()
	for i := 0; i < 10; i++ {
		if got := key.String(); got != first {
			t.Errorf("result[%d] = %v, want %v (not deterministic)", i, got, first)
		}
	}
}
