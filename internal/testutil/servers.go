package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
)

// FakeRDM is an in-memory InvenioRDM API served by httptest
type FakeRDM struct {
	Server *httptest.Server
	Token  string

	mu       sync.Mutex
	records  map[string]json.RawMessage
	order    []string
	requests []*http.Request
	nextID   int
}

// NewFakeRDM starts a fake server requiring the given bearer token.
// It is closed automatically when the test ends.
func NewFakeRDM(t interface {
	Helper()
	Cleanup(func())
}, token string) *FakeRDM {
	t.Helper()

	f := &FakeRDM{
		Token:   token,
		records: make(map[string]json.RawMessage),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, "OK")
	})
	mux.HandleFunc("GET /api/records", f.listRecords)
	mux.HandleFunc("POST /api/records", f.createRecord)
	mux.HandleFunc("GET /api/records/{id}", f.getRecord)
	mux.HandleFunc("PUT /api/records/{id}", f.updateRecord)
	mux.HandleFunc("DELETE /api/records/{id}", f.deleteRecord)
	mux.HandleFunc("GET /api/communities", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, CommunityHits(sizeParam(r, "size", 3)))
	})
	mux.HandleFunc("GET /api/communities/{slug}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("slug") != "front_matter" {
			writeJSON(w, http.StatusNotFound, ErrorNotFoundJSON)
			return
		}
		writeJSON(w, http.StatusOK, CommunityJSON)
	})
	mux.HandleFunc("GET /api/communities/{slug}/records", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, Hits(sizeParam(r, "s", 10)))
	})
	mux.HandleFunc("GET /api/vocabularies/resourcetypes", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, ResourceTypesJSON)
	})

	f.Server = httptest.NewServer(f.authenticate(mux))
	t.Cleanup(f.Server.Close)

	return f
}

// BaseURL returns the API root including /api
func (f *FakeRDM) BaseURL() string {
	return f.Server.URL + "/api"
}

// Requests returns a copy of the requests received so far
func (f *FakeRDM) Requests() []*http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*http.Request(nil), f.requests...)
}

// AddRecord stores a record directly
func (f *FakeRDM) AddRecord(id, doc string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.records[id]; !ok {
		f.order = append(f.order, id)
	}
	f.records[id] = json.RawMessage(doc)
}

func (f *FakeRDM) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests = append(f.requests, r.Clone(r.Context()))
		f.mu.Unlock()

		if r.Header.Get("Authorization") != "Bearer "+f.Token {
			writeJSON(w, http.StatusForbidden, `{"status":403,"message":"Permission denied."}`)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeRDM) listRecords(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	hits := make([]json.RawMessage, 0, len(f.order))
	for _, id := range f.order {
		hits = append(hits, f.records[id])
	}
	if size := sizeParam(r, "size", 0); size > 0 && size < len(hits) {
		hits = hits[:size]
	}

	body, _ := json.Marshal(map[string]any{
		"hits": map[string]any{"hits": hits, "total": len(f.order)},
	})
	writeJSON(w, http.StatusOK, string(body))
}

func (f *FakeRDM) createRecord(w http.ResponseWriter, r *http.Request) {
	var doc map[string]any
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeJSON(w, http.StatusBadRequest, `{"status":400,"message":"Invalid JSON"}`)
		return
	}

	f.mu.Lock()
	f.nextID++
	id := fmt.Sprintf("new-%d", f.nextID)
	f.mu.Unlock()

	doc["id"] = id
	body, _ := json.Marshal(doc)
	f.AddRecord(id, string(body))

	writeJSON(w, http.StatusCreated, string(body))
}

func (f *FakeRDM) getRecord(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	doc, ok := f.records[r.PathValue("id")]
	f.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorNotFoundJSON)
		return
	}
	writeJSON(w, http.StatusOK, string(doc))
}

func (f *FakeRDM) updateRecord(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	f.mu.Lock()
	_, ok := f.records[id]
	f.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorNotFoundJSON)
		return
	}

	var doc map[string]any
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeJSON(w, http.StatusBadRequest, `{"status":400,"message":"Invalid JSON"}`)
		return
	}
	doc["id"] = id
	body, _ := json.Marshal(doc)
	f.AddRecord(id, string(body))

	writeJSON(w, http.StatusOK, string(body))
}

func (f *FakeRDM) deleteRecord(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.records[id]; !ok {
		writeJSON(w, http.StatusNotFound, ErrorNotFoundJSON)
		return
	}
	delete(f.records, id)
	for i, existing := range f.order {
		if existing == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func sizeParam(r *http.Request, name string, fallback int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
