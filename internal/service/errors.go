package service

import "errors"

var (
	// ErrDocumentNotFound covers both a missing document and one owned by
	// someone else.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrFileNameTaken is returned when another subject already owns the key.
	ErrFileNameTaken = errors.New("file name already in use")
	ErrEmptyFileName = errors.New("file name is required")
	ErrInvalidFile   = errors.New("file name must not contain path separators")
	ErrEmptyContent  = errors.New("file content is empty")
	ErrNotPDF        = errors.New("only PDF files are accepted")
)
