package memory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Backend timestamps come from Postgres without a zone.
var backendTimestampLayouts = []string{
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
}

// ID is a backend identifier. The backend emits integers for documents and
// clusters but strings for face ids; both decode into ID.
type ID string

// UnmarshalJSON accepts a JSON number or string.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON emits numeric ids as numbers so the backend's integer fields
// validate.
func (id ID) MarshalJSON() ([]byte, error) {
	// Only canonical integers go out bare; "007" or "+5" are not JSON numbers.
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ID) String() string { return string(id) }

// StatusResponse is the generic {"status": "..."} acknowledgement.
type StatusResponse struct {
	Status string `json:"status"`
	Count  int    `json:"count,omitempty"`
}

// UploadResponse mirrors POST /upload.
type UploadResponse struct {
	Status      string `json:"status"`
	Filename    string `json:"filename"`
	DocumentID  ID     `json:"document_id"`
	ChunksAdded *int   `json:"chunks_added,omitempty"`
}

// Document is one stored document record from GET /documents.
type Document struct {
	DocumentID ID     `json:"document_id"`
	Filename   string `json:"filename"`
	Type       string `json:"type"`
	CreatedAt  string `json:"created_at"`
	FileURL    string `json:"file_url,omitempty"`
}

// ParsedCreatedAt returns the parsed CreatedAt timestamp, or the zero time.
func (d Document) ParsedCreatedAt() time.Time {
	return parseTime(d.CreatedAt)
}

// Evidence is supporting material returned with an answer.
type Evidence struct {
	Filename   string `json:"filename"`
	Chunk      string `json:"chunk"`
	DocumentID ID     `json:"document_id"`
	PreviewURL string `json:"preview_url,omitempty"`
	FileURL    string `json:"file_url,omitempty"`
}

// QueryResponse mirrors POST /smart-query.
type QueryResponse struct {
	Answer   string     `json:"answer"`
	Evidence []Evidence `json:"evidence"`
}

// Face is a detected or matched face.
type Face struct {
	FaceID    ID      `json:"face_id"`
	ClusterID ID      `json:"cluster_id,omitempty"`
	Label     string  `json:"label,omitempty"`
	ImageURL  string  `json:"image_url,omitempty"`
	Unmatched bool    `json:"unmatched,omitempty"`
	Score     float64 `json:"score,omitempty"`
}

// FaceUploadResponse mirrors POST /face/upload.
type FaceUploadResponse struct {
	Status string `json:"status,omitempty"`
	Count  int    `json:"count,omitempty"`
	Faces  []Face `json:"faces"`
}

// Unmatched returns the faces the backend could not assign to a label.
func (r FaceUploadResponse) Unmatched() []Face {
	var out []Face
	for _, f := range r.Faces {
		if f.Unmatched {
			out = append(out, f)
		}
	}
	return out
}

// FaceFolder groups faces sharing a label.
type FaceFolder struct {
	Label      string `json:"label"`
	PreviewURL string `json:"preview_url"`
	Count      int    `json:"count"`
}

// FaceSearchResponse mirrors POST /face/search.
type FaceSearchResponse struct {
	Status  string `json:"status,omitempty"`
	Matches []Face `json:"matches"`
}

// SearchResponse mirrors GET /search.
type SearchResponse struct {
	Query     string  `json:"query"`
	BestMatch *string `json:"best_match"`
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	for _, layout := range backendTimestampLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}
