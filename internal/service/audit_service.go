package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/Behnamfe76/docvault/internal/events"
)

// AuditService writes a structured log line for every domain event.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventLoginCompleted, a.handleLoginCompleted)
	a.dispatcher.Subscribe(events.EventDocumentUploaded, a.handleDocumentUploaded)
	a.dispatcher.Subscribe(events.EventDocumentDeleted, a.handleDocumentDeleted)
}

func (a *AuditService) handleLoginCompleted(_ context.Context, event events.Event) error {
	fields := a.baseFields(event)
	if payload, ok := event.Payload.(events.LoginCompletedPayload); ok {
		fields = append(fields, zap.String("provider", payload.Provider), zap.String("provider_sub", payload.ProviderSub))
	}
	a.logger.Info("LoginCompleted", fields...)
	return nil
}

func (a *AuditService) handleDocumentUploaded(_ context.Context, event events.Event) error {
	fields := a.baseFields(event)
	if payload, ok := event.Payload.(events.DocumentUploadedPayload); ok {
		fields = append(fields,
			zap.String("document_id", payload.DocumentID),
			zap.String("tag", payload.Tag),
			zap.Int64("size_bytes", payload.SizeBytes))
	}
	a.logger.Info("DocumentUploaded", fields...)
	return nil
}

func (a *AuditService) handleDocumentDeleted(_ context.Context, event events.Event) error {
	fields := a.baseFields(event)
	if payload, ok := event.Payload.(events.DocumentDeletedPayload); ok {
		fields = append(fields,
			zap.String("document_id", payload.DocumentID),
			zap.Bool("object_removed", payload.ObjectRemoved))
	}
	a.logger.Info("DocumentDeleted", fields...)
	return nil
}

func (a *AuditService) baseFields(event events.Event) []zap.Field {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("subject", event.Subject),
		zap.Time("at", event.Timestamp),
	}
	if event.ResourceKey != "" {
		fields = append(fields, zap.String("resource_key", event.ResourceKey))
	}
	return fields
}
