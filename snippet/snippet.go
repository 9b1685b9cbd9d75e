package snippet

import (
	"fmt"
	"os"
)

// Document is a documentation file read into memory.
type Document struct {
	// Path identifies the document in results and diagnostics.
	Path string

	// Text is the full document content.
	Text string
}

// Snippet is one fenced code block extracted from a document.
type Snippet struct {
	// Code is the executable body, including rewritten assertions.
	Code string `json:"code"`

	// Path is the path of the document the snippet belongs to.
	Path string `json:"path"`

	// Line is the 1-based document line of the opening fence.
	Line int `json:"line"`

	// Lang is the lower-cased fence tag, e.g. "js" or "typescript".
	Lang string `json:"lang"`

	// Skip is set when a skip directive preceded the fence.
	Skip bool `json:"skip,omitempty"`

	// Complete is set once the closing fence has been seen.
	Complete bool `json:"complete"`
}

// Location returns "path:line" for the snippet's opening fence.
func (s Snippet) Location() string {
	return fmt.Sprintf("%s:%d", s.Path, s.Line)
}

// File is the parse result for one document.
type File struct {
	// Path is the document path.
	Path string `json:"path"`

	// Snippets are the document's snippets in source order.
	Snippets []Snippet `json:"snippets"`

	// ShareSandbox reports whether the document asked for one sandbox
	// shared by all of its snippets.
	ShareSandbox bool `json:"shareSandbox,omitempty"`
}

// ReadDocument reads a document from disk.
func ReadDocument(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Document{Path: path, Text: string(data)}, nil
}

// ParseFile reads and parses the document at path.
func ParseFile(path string) (File, error) {
	doc, err := ReadDocument(path)
	if err != nil {
		return File{}, err
	}
	return Parse(doc)
}
