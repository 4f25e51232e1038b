package store

import (
	"encoding/json"
	"time"
)

// ScriptInput carries the writable fields of a script. Config is the saved
// appearance document and may be nil.
type ScriptInput struct {
	OwnerID       string
	Title         string
	Content       string
	BackgroundURL string
	MusicURL      string
	Tags          []string
	Config        json.RawMessage
	SourceFile    string
	SourceHash    string
}

type Script struct {
	ID            string          `json:"id"`
	OwnerID       string          `json:"ownerId"`
	Title         string          `json:"title"`
	Content       string          `json:"content"`
	BackgroundURL string          `json:"bgUrl"`
	MusicURL      string          `json:"musicUrl"`
	Tags          []string        `json:"tags"`
	Config        json.RawMessage `json:"config,omitempty"`
	SourceFile    string          `json:"sourceFile,omitempty"`
	SourceHash    string          `json:"-"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

type ScriptSummary struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Title     string    `json:"title"`
	Tags      []string  `json:"tags"`
	CharCount int       `json:"charCount"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type SearchResult struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Tags    []string `json:"tags"`
	Score   float64  `json:"score"`
	Snippet string   `json:"snippet"`
}

type RecordingInput struct {
	OwnerID         string
	ScriptID        string
	FileName        string
	MimeType        string
	SizeBytes       int64
	DurationSeconds float64
	StoragePath     string
}

type Recording struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"ownerId"`
	ScriptID        string    `json:"scriptId,omitempty"`
	FileName        string    `json:"fileName"`
	MimeType        string    `json:"mimeType"`
	SizeBytes       int64     `json:"sizeBytes"`
	DurationSeconds float64   `json:"durationSeconds"`
	StoragePath     string    `json:"storagePath"`
	CreatedAt       time.Time `json:"createdAt"`
}
