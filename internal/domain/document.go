package domain

import "time"

// Document is the metadata record kept for every uploaded PDF. ResourceKey is
// the identifier callers use; the stored object lives at ObjectKey.
type Document struct {
	ID           string
	OwnerSubject string
	ResourceKey  string
	Tag          string
	Description  string
	SizeBytes    int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ObjectKey places an object under its owner's prefix. Resource keys never
// contain a slash, so distinct (owner, key) pairs never share an object.
func ObjectKey(owner, resourceKey string) string {
	return owner + "/" + resourceKey
}

// ObjectKey returns the storage key of the document's object.
func (d Document) ObjectKey() string {
	return ObjectKey(d.OwnerSubject, d.ResourceKey)
}
