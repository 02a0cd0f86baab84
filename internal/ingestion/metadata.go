package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Source records where ingested text came from
type Source string

const (
	SourceFile   Source = "file"
	SourceURL    Source = "url"
	SourceInline Source = "inline"
)

// Metadata describes an ingested document
type Metadata struct {
	Source    Source `json:"source"`
	Path      string `json:"path,omitempty"`
	URL       string `json:"url,omitempty"`
	Timestamp string `json:"timestamp"`          // RFC3339 format
	Hash      string `json:"hash"`               // SHA256 hex digest of the cleaned text
	Platform  string `json:"platform,omitempty"` // Detected job board platform
	PageTitle string `json:"page_title,omitempty"`
	Rendered  bool   `json:"rendered,omitempty"` // Text came from a headless browser render
}

// NewMetadata creates a new Metadata instance with current timestamp
func NewMetadata(content string, source Source) *Metadata {
	return &Metadata{
		Source:    source,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Hash:      computeHash(content),
	}
}

// computeHash computes SHA256 hash of content and returns hex string
func computeHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}
