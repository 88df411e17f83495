package memory

import (
	"context"
	"net/http"
	"net/url"
)

// API is the set of backend operations the UI and CLI use.
type API interface {
	AddMemory(ctx context.Context, content string) Outcome[StatusResponse]
	UploadFile(ctx context.Context, file FilePayload, onProgress ProgressFunc) Outcome[UploadResponse]
	SmartQuery(ctx context.Context, query string) Outcome[QueryResponse]
	Search(ctx context.Context, query string) Outcome[SearchResponse]
	ListDocuments(ctx context.Context) Outcome[[]Document]
	DeleteDocument(ctx context.Context, id ID) Outcome[StatusResponse]
	UploadFace(ctx context.Context, file FilePayload) Outcome[FaceUploadResponse]
	SearchFaceByImage(ctx context.Context, file FilePayload) Outcome[FaceSearchResponse]
	LabelFace(ctx context.Context, clusterID ID, label string) Outcome[StatusResponse]
	RenameLabel(ctx context.Context, clusterID ID, label string) Outcome[StatusResponse]
	RemoveLabel(ctx context.Context, clusterID ID) Outcome[StatusResponse]
	FaceFolders(ctx context.Context) Outcome[[]FaceFolder]
	SearchFaceByLabel(ctx context.Context, label string) Outcome[[]Face]
	DeleteFace(ctx context.Context, id ID) Outcome[StatusResponse]
	RebuildIndex(ctx context.Context) Outcome[StatusResponse]

	// ResolveURL turns a backend-relative file reference into an absolute URL.
	ResolveURL(ref string) string
}

var _ API = (*Client)(nil)

type labelRequest struct {
	ClusterID ID     `json:"cluster_id"`
	Label     string `json:"label"`
}

// AddMemory stores a text memory.
func (c *Client) AddMemory(ctx context.Context, content string) Outcome[StatusResponse] {
	return JSONRequest[StatusResponse](ctx, c, http.MethodPost, "/memory", map[string]string{"content": content})
}

// UploadFile stores a file and indexes its text.
func (c *Client) UploadFile(ctx context.Context, file FilePayload, onProgress ProgressFunc) Outcome[UploadResponse] {
	return MultipartUpload[UploadResponse](ctx, c, "/upload", file, onProgress)
}

// SmartQuery asks a question and returns the answer with its evidence.
func (c *Client) SmartQuery(ctx context.Context, query string) Outcome[QueryResponse] {
	return JSONRequest[QueryResponse](ctx, c, http.MethodPost, "/smart-query", map[string]string{"query": query})
}

// Search returns the single best matching memory.
func (c *Client) Search(ctx context.Context, query string) Outcome[SearchResponse] {
	return JSONRequest[SearchResponse](ctx, c, http.MethodGet, "/search?query="+url.QueryEscape(query), nil)
}

func (c *Client) ListDocuments(ctx context.Context) Outcome[[]Document] {
	return JSONRequest[[]Document](ctx, c, http.MethodGet, "/documents", nil)
}

func (c *Client) DeleteDocument(ctx context.Context, id ID) Outcome[StatusResponse] {
	return JSONRequest[StatusResponse](ctx, c, http.MethodDelete, "/document/"+url.PathEscape(id.String()), nil)
}

// UploadFace detects and indexes the faces in an image.
func (c *Client) UploadFace(ctx context.Context, file FilePayload) Outcome[FaceUploadResponse] {
	return MultipartUpload[FaceUploadResponse](ctx, c, "/face/upload", file, nil)
}

// SearchFaceByImage finds faces similar to the first face in an image.
func (c *Client) SearchFaceByImage(ctx context.Context, file FilePayload) Outcome[FaceSearchResponse] {
	return MultipartUpload[FaceSearchResponse](ctx, c, "/face/search", file, nil)
}

func (c *Client) LabelFace(ctx context.Context, clusterID ID, label string) Outcome[StatusResponse] {
	return JSONRequest[StatusResponse](ctx, c, http.MethodPost, "/face/label", labelRequest{ClusterID: clusterID, Label: label})
}

func (c *Client) RenameLabel(ctx context.Context, clusterID ID, label string) Outcome[StatusResponse] {
	return JSONRequest[StatusResponse](ctx, c, http.MethodPost, "/face/label/rename", labelRequest{ClusterID: clusterID, Label: label})
}

func (c *Client) RemoveLabel(ctx context.Context, clusterID ID) Outcome[StatusResponse] {
	return JSONRequest[StatusResponse](ctx, c, http.MethodPost, "/face/label/remove?cluster_id="+url.QueryEscape(clusterID.String()), nil)
}

func (c *Client) FaceFolders(ctx context.Context) Outcome[[]FaceFolder] {
	return JSONRequest[[]FaceFolder](ctx, c, http.MethodGet, "/face/folders", nil)
}

func (c *Client) SearchFaceByLabel(ctx context.Context, label string) Outcome[[]Face] {
	return JSONRequest[[]Face](ctx, c, http.MethodGet, "/face/search-by-label?label="+url.QueryEscape(label), nil)
}

func (c *Client) DeleteFace(ctx context.Context, id ID) Outcome[StatusResponse] {
	return JSONRequest[StatusResponse](ctx, c, http.MethodDelete, "/faces/"+url.PathEscape(id.String()), nil)
}

// RebuildIndex asks the backend to rebuild its vector index.
func (c *Client) RebuildIndex(ctx context.Context) Outcome[StatusResponse] {
	return JSONRequest[StatusResponse](ctx, c, http.MethodPost, "/rebuild-faiss", nil)
}
