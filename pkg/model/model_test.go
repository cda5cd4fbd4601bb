package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRequests(t *testing.T) {
	requests := NewRequests([]string{"http://host/a.txt", "ftp://host/b.bin"}, "./out", 3)

	assert.Equal(t, []Request{
		{URI: "http://host/a.txt", DestDir: "./out", Retries: 3},
		{URI: "ftp://host/b.bin", DestDir: "./out", Retries: 3},
	}, requests)
}

func TestRequest_Scheme(t *testing.T) {
	tests := []struct {
		uri      string
		expected string
	}{
		{uri: "http://host/a.txt", expected: "http"},
		{uri: "HTTPS://host/a.txt", expected: "https"},
		{uri: "sftp://user@host:2222/data/x", expected: "sftp"},
		{uri: "gopher://host/file", expected: "gopher"},
		{uri: "no-scheme", expected: ""},
		{uri: "http://[::1", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			assert.Equal(t, tt.expected, Request{URI: tt.uri}.Scheme())
		})
	}
}

func TestSummarize(t *testing.T) {
	req := Request{URI: "http://host/a.txt", DestDir: "./out", Retries: 1}
	outcomes := []Outcome{
		Succeeded(req, "./out/a.txt", 10, 1),
		Succeeded(req, "./out/a_1.txt", 10, 2),
		Failed(req, "./out/b.txt", 3, errors.New("boom")),
		Skipped(req, errors.New("unsupported")),
	}

	summary := Summarize(outcomes)
	assert.Equal(t, Summary{Succeeded: 2, Failed: 1, Skipped: 1}, summary)
	assert.Equal(t, 4, summary.Total())
	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "succeeded", StatusSucceeded.String())
	assert.Equal(t, "failed", StatusFailed.String())
	assert.Equal(t, "skipped", StatusSkipped.String())
	assert.Equal(t, "status(9)", Status(9).String())
}
