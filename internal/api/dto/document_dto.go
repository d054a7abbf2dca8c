package dto

import "time"

// UploadDocumentRequest holds the non-file multipart fields of an upload.
type UploadDocumentRequest struct {
	Tag         string `form:"tag" validate:"max=64"`
	Description string `form:"description" validate:"max=1024"`
}

// FileNameQuery selects a document by name.
type FileNameQuery struct {
	FileName string `query:"file_name" validate:"required,max=255"`
}

// DocumentResponse describes a stored document.
type DocumentResponse struct {
	ID          string    `json:"id"`
	FileName    string    `json:"file_name"`
	Tag         string    `json:"tag"`
	Description string    `json:"description"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DocumentListResponse wraps a listing.
type DocumentListResponse struct {
	Documents []DocumentResponse `json:"documents"`
}

// PresignedURLResponse carries a short-lived retrieval URL.
type PresignedURLResponse struct {
	URL string `json:"url"`
}

// DeleteDocumentResponse confirms a deletion.
type DeleteDocumentResponse struct {
	Deleted string `json:"deleted"`
}
