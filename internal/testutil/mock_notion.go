// Package testutil provides testing utilities for the Notion client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
)

// Request kinds accepted by FailNext and RequestCount.
const (
	KindQuery    = "query"
	KindDatabase = "database"
	KindChildren = "children"
)

// Fault is an injected error response.
type Fault struct {
	StatusCode int
	Headers    map[string]string
	Body       string
}

// MockNotion is a configurable in-memory Notion API.
//
// Query results and block children are paginated with opaque cursors of the
// form "cursor-<offset>". The requested page_size is honoured, capped at 100.
type MockNotion struct {
	server *httptest.Server

	mu       sync.Mutex
	entries  []json.RawMessage
	database json.RawMessage
	children map[string][]json.RawMessage
	faults   map[string][]Fault
	counts   map[string]int

	// LastQuery is the most recent decoded query body.
	LastQuery map[string]any
	// LastRequestHeader holds the headers of the most recent request.
	LastRequestHeader http.Header
}

// NewMockNotion starts a mock server. Close it when done.
func NewMockNotion() *MockNotion {
	m := &MockNotion{
		children: make(map[string][]json.RawMessage),
		faults:   make(map[string][]Fault),
		counts:   make(map[string]int),
	}
	m.server = httptest.NewServer(http.HandlerFunc(m.handle))
	return m
}

// URL returns the mock server URL.
func (m *MockNotion) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockNotion) Close() {
	m.server.Close()
}

// SetEntries sets the database query results in remote order.
func (m *MockNotion) SetEntries(entries ...json.RawMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = entries
}

// SetDatabase sets the database metadata body.
func (m *MockNotion) SetDatabase(db json.RawMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.database = db
}

// SetChildren sets the children of a block.
func (m *MockNotion) SetChildren(blockID string, blocks ...json.RawMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.children[blockID] = blocks
}

// FailNext queues faults for the next requests of a kind. Each fault is
// consumed by one request.
func (m *MockNotion) FailNext(kind string, faults ...Fault) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.faults[kind] = append(m.faults[kind], faults...)
}

// RequestCount returns the number of requests of a kind, faults included.
func (m *MockNotion) RequestCount(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[kind]
}

// Reset clears all tracking counters and queued faults.
func (m *MockNotion) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts = make(map[string]int)
	m.faults = make(map[string][]Fault)
	m.LastQuery = nil
	m.LastRequestHeader = nil
}

func (m *MockNotion) handle(w http.ResponseWriter, r *http.Request) {
	kind, id := route(r)
	if kind == "" {
		writeError(w, http.StatusNotFound, "invalid_request_url", "Invalid request URL.")
		return
	}

	m.mu.Lock()
	m.counts[kind]++
	m.LastRequestHeader = r.Header.Clone()
	var fault *Fault
	if queued := m.faults[kind]; len(queued) > 0 {
		fault = &queued[0]
		m.faults[kind] = queued[1:]
	}
	m.mu.Unlock()

	if fault != nil {
		for key, value := range fault.Headers {
			w.Header().Set(key, value)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(fault.StatusCode)
		w.Write([]byte(fault.Body))
		return
	}

	if r.Header.Get("Authorization") == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized", "API token is invalid.")
		return
	}

	switch kind {
	case KindQuery:
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
			return
		}
		m.mu.Lock()
		m.LastQuery = body
		entries := m.entries
		m.mu.Unlock()

		size, _ := body["page_size"].(float64)
		cursor, _ := body["start_cursor"].(string)
		writePage(w, entries, int(size), cursor)

	case KindDatabase:
		m.mu.Lock()
		db := m.database
		m.mu.Unlock()
		if db == nil {
			writeError(w, http.StatusNotFound, "object_not_found", "Could not find database with ID: "+id+".")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(db)

	case KindChildren:
		m.mu.Lock()
		blocks, ok := m.children[id]
		m.mu.Unlock()
		if !ok {
			writeError(w, http.StatusNotFound, "object_not_found", "Could not find block with ID: "+id+".")
			return
		}
		size, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
		writePage(w, blocks, size, r.URL.Query().Get("start_cursor"))
	}
}

// route identifies the endpoint kind and the object id of a request.
func route(r *http.Request) (string, string) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case len(parts) == 4 && parts[1] == "databases" && parts[3] == "query" && r.Method == http.MethodPost:
		return KindQuery, parts[2]
	case len(parts) == 3 && parts[1] == "databases" && r.Method == http.MethodGet:
		return KindDatabase, parts[2]
	case len(parts) == 4 && parts[1] == "blocks" && parts[3] == "children" && r.Method == http.MethodGet:
		return KindChildren, parts[2]
	}
	return "", ""
}

func writePage(w http.ResponseWriter, items []json.RawMessage, size int, cursor string) {
	if size <= 0 || size > 100 {
		size = 100
	}

	start := 0
	if cursor != "" {
		n, err := strconv.Atoi(strings.TrimPrefix(cursor, "cursor-"))
		if err != nil || n < 0 || n > len(items) {
			writeError(w, http.StatusBadRequest, "validation_error", "start_cursor is invalid")
			return
		}
		start = n
	}

	end := start + size
	if end > len(items) {
		end = len(items)
	}

	page := map[string]any{
		"object":      "list",
		"results":     items[start:end],
		"has_more":    end < len(items),
		"next_cursor": nil,
	}
	if end < len(items) {
		page["next_cursor"] = fmt.Sprintf("cursor-%d", end)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(page)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"object":  "error",
		"status":  status,
		"code":    code,
		"message": message,
	})
}

// NewRateLimitFault creates a 429 fault with the given Retry-After seconds.
func NewRateLimitFault(retryAfter int) Fault {
	return Fault{
		StatusCode: http.StatusTooManyRequests,
		Headers:    map[string]string{"Retry-After": strconv.Itoa(retryAfter)},
		Body:       `{"object":"error","status":429,"code":"rate_limited","message":"You have been rate limited."}`,
	}
}

// NewServerErrorFault creates a 500 fault.
func NewServerErrorFault() Fault {
	return Fault{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"object":"error","status":500,"code":"internal_server_error","message":"Unexpected error."}`,
	}
}

// NewNotFoundFault creates a 404 fault.
func NewNotFoundFault() Fault {
	return Fault{
		StatusCode: http.StatusNotFound,
		Body:       `{"object":"error","status":404,"code":"object_not_found","message":"Not found."}`,
	}
}
