package service

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Behnamfe76/docvault/internal/auth"
	"github.com/Behnamfe76/docvault/internal/domain"
	"github.com/Behnamfe76/docvault/internal/events"
	"github.com/Behnamfe76/docvault/internal/repository"
	"github.com/Behnamfe76/docvault/internal/storage"
)

// DocumentService coordinates document workflows for authenticated subjects.
type DocumentService struct {
	documents  repository.DocumentRepository
	objects    storage.ObjectStore
	guard      *auth.OwnershipGuard
	dispatcher events.Dispatcher
	logger     *zap.Logger
	presignTTL time.Duration
}

// DocumentDependencies bundles collaborators for the document service.
type DocumentDependencies struct {
	DocumentRepo repository.DocumentRepository
	ObjectStore  storage.ObjectStore
	Guard        *auth.OwnershipGuard
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
	PresignTTL   time.Duration
}

// UploadInput describes an upload request.
type UploadInput struct {
	FileName    string
	ContentType string
	Tag         string
	Description string
	Content     []byte
}

// NewDocumentService constructs the service. A nil guard checks ownership
// against the document repository.
func NewDocumentService(deps DocumentDependencies) *DocumentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	guard := deps.Guard
	if guard == nil {
		guard = auth.NewOwnershipGuard(deps.DocumentRepo)
	}
	return &DocumentService{
		documents:  deps.DocumentRepo,
		objects:    deps.ObjectStore,
		guard:      guard,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		presignTTL: deps.PresignTTL,
	}
}

// Upload stores the file under the caller's object prefix and records the
// caller as owner. Re-uploading a name the caller already owns replaces it.
func (s *DocumentService) Upload(ctx context.Context, subject string, input UploadInput) (*domain.Document, error) {
	key, err := validateUpload(input)
	if err != nil {
		return nil, err
	}

	owner, found, err := s.documents.GetOwner(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("lookup owner: %w", err)
	}
	if found && owner != subject {
		return nil, ErrFileNameTaken
	}

	objectKey := domain.ObjectKey(subject, key)
	if err := s.objects.Put(ctx, objectKey, input.Content, storage.PDFContentType); err != nil {
		return nil, fmt.Errorf("store object: %w", err)
	}

	doc := &domain.Document{
		OwnerSubject: subject,
		ResourceKey:  key,
		Tag:          strings.TrimSpace(input.Tag),
		Description:  strings.TrimSpace(input.Description),
		SizeBytes:    int64(len(input.Content)),
	}
	if err := s.documents.Insert(ctx, doc); err != nil {
		if errors.Is(err, repository.ErrKeyTaken) {
			// Another subject claimed the name after the precheck.
			s.removeObject(ctx, objectKey)
			return nil, ErrFileNameTaken
		}
		return nil, fmt.Errorf("record document: %w", err)
	}

	s.publishEvent(ctx, events.Event{
		Type:        events.EventDocumentUploaded,
		Subject:     subject,
		ResourceKey: key,
		Payload:     events.DocumentUploadedPayload{DocumentID: doc.ID, Tag: doc.Tag, SizeBytes: doc.SizeBytes},
	})
	return doc, nil
}

// List returns the caller's documents, newest first.
func (s *DocumentService) List(ctx context.Context, subject string) ([]domain.Document, error) {
	return s.documents.ListByOwner(ctx, subject)
}

// PresignedURL returns a short-lived inline URL for a document the caller owns.
func (s *DocumentService) PresignedURL(ctx context.Context, subject, key string) (string, error) {
	key = strings.TrimSpace(key)
	if err := s.authorize(ctx, subject, key); err != nil {
		return "", err
	}
	url, err := s.objects.PresignGet(ctx, domain.ObjectKey(subject, key), s.presignTTL)
	if err != nil {
		return "", fmt.Errorf("presign: %w", err)
	}
	return url, nil
}

// Delete removes the metadata record and then the stored object. A failure to
// remove the object is logged and does not fail the request.
func (s *DocumentService) Delete(ctx context.Context, subject, key string) error {
	key = strings.TrimSpace(key)
	if err := s.authorize(ctx, subject, key); err != nil {
		return err
	}

	doc, err := s.documents.Delete(ctx, subject, key)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrDocumentNotFound
	}
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	objectRemoved := s.removeObject(ctx, doc.ObjectKey())

	s.publishEvent(ctx, events.Event{
		Type:        events.EventDocumentDeleted,
		Subject:     subject,
		ResourceKey: key,
		Payload:     events.DocumentDeletedPayload{DocumentID: doc.ID, ObjectRemoved: objectRemoved},
	})
	return nil
}

func (s *DocumentService) removeObject(ctx context.Context, objectKey string) bool {
	if err := s.objects.Delete(ctx, objectKey); err != nil {
		s.logger.Warn("stored object not removed", zap.String("object_key", objectKey), zap.Error(err))
		return false
	}
	return true
}

func (s *DocumentService) authorize(ctx context.Context, subject, key string) error {
	decision, err := s.guard.Authorize(ctx, subject, key)
	if err != nil {
		return err
	}
	if decision != auth.Allowed {
		s.logger.Debug("ownership denied", zap.String("subject", subject), zap.String("resource_key", key))
		return ErrDocumentNotFound
	}
	return nil
}

func (s *DocumentService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, events.Stamp(event)); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func validateUpload(input UploadInput) (string, error) {
	key := strings.TrimSpace(input.FileName)
	if key == "" {
		return "", ErrEmptyFileName
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", ErrInvalidFile
	}
	if len(input.Content) == 0 {
		return "", ErrEmptyContent
	}
	if !isPDF(key, input.ContentType) {
		return "", ErrNotPDF
	}
	return key, nil
}

func isPDF(name, contentType string) bool {
	if strings.EqualFold(path.Ext(name), ".pdf") {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == storage.PDFContentType
}
