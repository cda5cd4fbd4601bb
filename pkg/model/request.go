// Package model provides the data structures passed between the download
// orchestrator, the retry controller and the CLI.
package model

import (
	"net/url"
	"strings"
)

// Request is one user-specified URI to fetch. It is created when a run starts
// and never mutated.
type Request struct {
	URI     string
	DestDir string
	Retries int
}

// NewRequests builds one Request per URI sharing the same destination and retry budget.
func NewRequests(uris []string, destDir string, retries int) []Request {
	requests := make([]Request, 0, len(uris))
	for _, uri := range uris {
		requests = append(requests, Request{URI: uri, DestDir: destDir, Retries: retries})
	}
	return requests
}

// Scheme returns the lower-cased URI scheme, or "" when the URI cannot be parsed.
func (r Request) Scheme() string {
	u, err := url.Parse(r.URI)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Scheme)
}
