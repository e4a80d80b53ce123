// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package wikipediatest provides an in-memory MediaWiki Action API server for tests.
package wikipediatest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
)

// Page is a page served by the fake wiki.
type Page struct {
	Title   string
	PageID  int
	Content string
}

// Server answers list=search and prop=extracts queries from fixed data.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	results  map[string][]string
	pages    map[string]Page
	requests []url.Values
}

// NewServer starts a fake wiki. Call Close when done.
func NewServer() *Server {
	s := &Server{
		results: make(map[string][]string),
		pages:   make(map[string]Page),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// Endpoint returns the api.php URL of the fake wiki.
func (s *Server) Endpoint() string {
	return s.URL + "/w/api.php"
}

// AddSearch registers the ordered titles returned for a search term.
func (s *Server) AddSearch(term string, titles ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[term] = titles
}

// AddPage registers a page that Fetch can retrieve.
func (s *Server) AddPage(p Page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[p.Title] = p
}

// Requests returns the query strings received so far.
func (s *Server) Requests() []url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]url.Values(nil), s.requests...)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.mu.Lock()
	s.requests = append(s.requests, q)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	switch {
	case q.Get("list") == "search":
		s.search(w, q.Get("srsearch"))
	case strings.Contains(q.Get("prop"), "extracts"):
		s.page(w, q.Get("titles"))
	default:
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"code": "badvalue", "info": "unsupported request"},
		})
	}
}

func (s *Server) search(w http.ResponseWriter, term string) {
	s.mu.Lock()
	titles := s.results[term]
	s.mu.Unlock()

	hits := make([]map[string]any, 0, len(titles))
	for i, t := range titles {
		hits = append(hits, map[string]any{"ns": 0, "title": t, "pageid": i + 1})
	}
	json.NewEncoder(w).Encode(map[string]any{
		"batchcomplete": true,
		"query": map[string]any{
			"searchinfo": map[string]any{"totalhits": len(titles)},
			"search":     hits,
		},
	})
}

func (s *Server) page(w http.ResponseWriter, title string) {
	s.mu.Lock()
	p, ok := s.pages[title]
	s.mu.Unlock()

	var page map[string]any
	if !ok {
		page = map[string]any{"ns": 0, "title": title, "missing": true}
	} else {
		page = map[string]any{
			"ns":        0,
			"title":     p.Title,
			"pageid":    p.PageID,
			"extract":   p.Content,
			"fullurl":   "https://en.wikipedia.org/wiki/" + url.PathEscape(strings.ReplaceAll(p.Title, " ", "_")),
			"revisions": []map[string]string{{"timestamp": "2026-01-02T03:04:05Z"}},
		}
	}
	json.NewEncoder(w).Encode(map[string]any{
		"batchcomplete": true,
		"query":         map[string]any{"pages": []map[string]any{page}},
	})
}
