package handlers

import (
	"net/http"
	"time"

	"github.com/crestline-ir/internal/blob"
	"github.com/crestline-ir/internal/config"
	"github.com/crestline-ir/internal/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DocumentHandler serves the investor-facing read paths. Every document read
// goes through the access gate first; nothing here mutates state.
type DocumentHandler struct {
	access *services.AccessService
	users  *services.UserService
	blobs  blob.Store
	cfg    *config.Configuration
	logger *zap.Logger
}

type documentSummary struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	CurrentVersion  int       `json:"current_version"`
	CurrentFileSize int64     `json:"current_file_size"`
	CreatedAt       time.Time `json:"created_at"`
}

func NewDocumentHandler(
	access *services.AccessService,
	users *services.UserService,
	blobs blob.Store,
	cfg *config.Configuration,
	logger *zap.Logger,
) *DocumentHandler {
	return &DocumentHandler{
		access: access,
		users:  users,
		blobs:  blobs,
		cfg:    cfg,
		logger: logger.With(zap.String("handler", "document")),
	}
}

func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	userID := c.GetUint("userID")

	docs, err := h.access.ListVisibleDocuments(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("list visible documents failed", zap.Error(err))
		respondError(c, err)
		return
	}

	summaries := make([]documentSummary, len(docs))
	for i, d := range docs {
		summaries[i] = documentSummary{
			ID:              d.ID,
			Title:           d.Title,
			Description:     d.Description,
			CurrentVersion:  d.CurrentVersion,
			CurrentFileSize: d.CurrentFileSize,
			CreatedAt:       d.CreatedAt,
		}
	}
	c.JSON(http.StatusOK, gin.H{"documents": summaries})
}

// DownloadDocument hands out a short-lived URL for the document's current
// version, provided the gate allows it.
func (h *DocumentHandler) DownloadDocument(c *gin.Context) {
	userID := c.GetUint("userID")
	documentID := c.Param("id")

	doc, err := h.access.GetVisibleDocument(c.Request.Context(), userID, documentID)
	if err != nil {
		respondError(c, err)
		return
	}

	url, err := h.blobs.PresignGet(c.Request.Context(), doc.CurrentFileRef, h.cfg.Storage.PresignTTL)
	if err != nil {
		h.logger.Error("presign failed", zap.String("document_id", documentID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "download unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":        url,
		"expires_in": h.cfg.Storage.PresignTTL.Seconds(),
	})
}

// NdaStatus lets the portal show whether the signature step is still pending.
func (h *DocumentHandler) NdaStatus(c *gin.Context) {
	userID := c.GetUint("userID")

	status, err := h.users.GetNdaStatus(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"signed":    status.Signed,
		"signed_at": status.SignedAt,
	})
}
