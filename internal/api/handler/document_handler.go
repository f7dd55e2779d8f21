package handler

import (
	"mime"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nadlan-invest/portal/internal/api/metrics"
	"github.com/nadlan-invest/portal/internal/core/domain"
	"github.com/nadlan-invest/portal/internal/core/ports"
)

// documentFormField is the multipart field carrying the uploaded file.
const documentFormField = "file"

type DocumentHandler struct {
	service  ports.DocumentService
	activity ports.ActivityRecorder
}

func NewDocumentHandler(service ports.DocumentService, activity ports.ActivityRecorder) *DocumentHandler {
	return &DocumentHandler{service: service, activity: activity}
}

type documentResponse struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploaded_at"`
	Download    string    `json:"download"`
}

type listDocumentsResponse struct {
	Data []documentResponse `json:"data"`
}

func toDocumentResponse(d *domain.Document) documentResponse {
	return documentResponse{
		ID:          d.ID,
		Filename:    d.Filename,
		ContentType: d.ContentType,
		Size:        d.Size,
		UploadedAt:  d.UploadedAt,
		Download:    "/api/documents/" + d.ID,
	}
}

// Upload handles POST /api/documents.
//
// @Summary      Upload a document
// @Tags         documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Document (max 10 MiB)"
// @Success      201   {object}  documentResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      413   {object}  errorResponse
// @Router       /api/documents [post]
func (h *DocumentHandler) Upload(c echo.Context) error {
	user, err := caller(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile(documentFormField)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing file")
	}
	src, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable file")
	}
	defer src.Close()

	doc, err := h.service.Upload(c.Request().Context(), user.ID, fh.Filename, fh.Header.Get(echo.HeaderContentType), fh.Size, src)
	if err != nil {
		return err
	}

	metrics.DocumentsUploadedBytes.Observe(float64(doc.Size))
	h.activity.Enqueue(domain.Activity{UserID: user.ID, Kind: domain.ActivityDocumentUploaded, Subject: doc.ID, Detail: doc.Filename, At: doc.UploadedAt})
	return c.JSON(http.StatusCreated, toDocumentResponse(doc))
}

// List handles GET /api/documents and returns the caller's documents.
//
// @Summary      List my documents
// @Tags         documents
// @Produce      json
// @Success      200  {object}  listDocumentsResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/documents [get]
func (h *DocumentHandler) List(c echo.Context) error {
	user, err := caller(c)
	if err != nil {
		return err
	}

	docs, err := h.service.List(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}

	resp := listDocumentsResponse{Data: make([]documentResponse, len(docs))}
	for i := range docs {
		resp.Data[i] = toDocumentResponse(&docs[i])
	}
	return c.JSON(http.StatusOK, resp)
}

// Download handles GET /api/documents/:id and streams the file content.
//
// @Summary      Download a document
// @Tags         documents
// @Produce      octet-stream
// @Param        id   path      string  true  "Document ID"
// @Success      200  {file}    file
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/documents/{id} [get]
func (h *DocumentHandler) Download(c echo.Context) error {
	user, err := caller(c)
	if err != nil {
		return err
	}

	doc, content, err := h.service.Open(c.Request().Context(), c.Param("id"), user.ID)
	if err != nil {
		return err
	}
	defer content.Close()

	hdr := c.Response().Header()
	hdr.Set(echo.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": doc.Filename}))
	hdr.Set(echo.HeaderXContentTypeOptions, "nosniff")
	return c.Stream(http.StatusOK, doc.ContentType, content)
}
