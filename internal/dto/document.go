// Package dto holds the transfer records exchanged over HTTP.
package dto

// UploadMetadata is the JSON "metadata" part of an upload request.
type UploadMetadata struct {
	User string   `json:"user"`
	Name string   `json:"name"`
	Tags []string `json:"tags"`
}

// SearchFilters is the optional JSON body of a search request.
type SearchFilters struct {
	User string   `json:"user,omitempty"`
	Name string   `json:"name,omitempty"`
	Tags []string `json:"tags,omitempty"`
}

// Document is the outward view of a stored document.
type Document struct {
	ID        string   `json:"id"`
	User      string   `json:"user"`
	Name      string   `json:"name"`
	Tags      []string `json:"tags"`
	Size      int64    `json:"size"`
	Type      string   `json:"type"`
	CreatedAt string   `json:"createdAt"`
}

// Metadata describes the page returned by a search.
type Metadata struct {
	CurrentPage  int   `json:"currentPage"`
	ItemsPerPage int   `json:"itemsPerPage"`
	CurrentItems int   `json:"currentItems"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
}

// SearchResponse is one page of search results.
type SearchResponse struct {
	Metadata  Metadata   `json:"metadata"`
	Documents []Document `json:"documents"`
}

// DownloadURLResponse carries a presigned download link.
type DownloadURLResponse struct {
	URL string `json:"url"`
}
