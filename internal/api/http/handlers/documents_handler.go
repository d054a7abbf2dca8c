package handlers

import (
	"io"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/Behnamfe76/docvault/internal/api/dto"
	"github.com/Behnamfe76/docvault/internal/auth"
	"github.com/Behnamfe76/docvault/internal/domain"
	"github.com/Behnamfe76/docvault/internal/service"
	apperrors "github.com/Behnamfe76/docvault/pkg/util/errorutil"
)

// DocumentsHandler manages the caller's documents.
type DocumentsHandler struct {
	service *service.DocumentService
}

// NewDocumentsHandler constructs handler.
func NewDocumentsHandler(documentService *service.DocumentService) *DocumentsHandler {
	return &DocumentsHandler{service: documentService}
}

// Upload POST /documents.
func (h *DocumentsHandler) Upload(c *fiber.Ctx) error {
	subject, ok := auth.SubjectFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("invalid token")
	}

	var req dto.UploadDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validate.Struct(req); err != nil {
		return validationError(err)
	}

	header, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("file is required", nil)
	}
	file, err := header.Open()
	if err != nil {
		return apperrors.NewValidationError("file is unreadable", nil)
	}
	defer file.Close()
	content, err := io.ReadAll(file)
	if err != nil {
		return apperrors.NewValidationError("file is unreadable", nil)
	}

	doc, err := h.service.Upload(c.UserContext(), subject, service.UploadInput{
		FileName:    header.Filename,
		ContentType: header.Header.Get(fiber.HeaderContentType),
		Tag:         req.Tag,
		Description: req.Description,
		Content:     content,
	})
	if err != nil {
		return mapDocumentError(err)
	}
	return c.Status(http.StatusCreated).JSON(documentResponse(doc))
}

// List GET /documents.
func (h *DocumentsHandler) List(c *fiber.Ctx) error {
	subject, ok := auth.SubjectFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("invalid token")
	}
	docs, err := h.service.List(c.UserContext(), subject)
	if err != nil {
		return mapDocumentError(err)
	}
	items := make([]dto.DocumentResponse, 0, len(docs))
	for i := range docs {
		items = append(items, documentResponse(&docs[i]))
	}
	return c.JSON(dto.DocumentListResponse{Documents: items})
}

// PresignedURL GET /documents/url.
func (h *DocumentsHandler) PresignedURL(c *fiber.Ctx) error {
	subject, ok := auth.SubjectFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("invalid token")
	}
	query, err := fileNameQuery(c)
	if err != nil {
		return err
	}
	url, err := h.service.PresignedURL(c.UserContext(), subject, query.FileName)
	if err != nil {
		return mapDocumentError(err)
	}
	return c.JSON(dto.PresignedURLResponse{URL: url})
}

// Delete DELETE /documents.
func (h *DocumentsHandler) Delete(c *fiber.Ctx) error {
	subject, ok := auth.SubjectFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("invalid token")
	}
	query, err := fileNameQuery(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), subject, query.FileName); err != nil {
		return mapDocumentError(err)
	}
	return c.JSON(dto.DeleteDocumentResponse{Deleted: query.FileName})
}

func fileNameQuery(c *fiber.Ctx) (dto.FileNameQuery, error) {
	var query dto.FileNameQuery
	if err := c.QueryParser(&query); err != nil {
		return query, apperrors.NewValidationError("invalid query", nil)
	}
	if err := validate.Struct(query); err != nil {
		return query, validationError(err)
	}
	return query, nil
}

func documentResponse(doc *domain.Document) dto.DocumentResponse {
	return dto.DocumentResponse{
		ID:          doc.ID,
		FileName:    doc.ResourceKey,
		Tag:         doc.Tag,
		Description: doc.Description,
		SizeBytes:   doc.SizeBytes,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
}
