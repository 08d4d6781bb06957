package handlers

import (
	"net/http"
	"strconv"

	"github.com/crestline-ir/internal/blob"
	"github.com/crestline-ir/internal/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminDocumentHandler exposes document lifecycle, version history, and grant
// management to administrators.
type AdminDocumentHandler struct {
	versions *services.VersionService
	grants   *services.GrantService
	blobs    blob.Store
	logger   *zap.Logger
}

func NewAdminDocumentHandler(
	versions *services.VersionService,
	grants *services.GrantService,
	blobs blob.Store,
	logger *zap.Logger,
) *AdminDocumentHandler {
	return &AdminDocumentHandler{
		versions: versions,
		grants:   grants,
		blobs:    blobs,
		logger:   logger.With(zap.String("handler", "admin_document")),
	}
}

// uploadBlob stores the request's file part and returns its ref and size.
func (h *AdminDocumentHandler) uploadBlob(c *gin.Context, documentID string) (string, int64, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return "", 0, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file"})
		return "", 0, false
	}
	defer file.Close()

	ref := services.VersionFileRef(documentID)
	contentType := fileHeader.Header.Get("Content-Type")
	if err := h.blobs.Put(c.Request.Context(), ref, file, fileHeader.Size, contentType); err != nil {
		h.logger.Error("blob upload failed", zap.String("file_ref", ref), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "file storage unavailable"})
		return "", 0, false
	}
	return ref, fileHeader.Size, true
}

func (h *AdminDocumentHandler) CreateDocument(c *gin.Context) {
	actorID := c.GetUint("userID")
	title := c.PostForm("title")
	description := c.PostForm("description")
	notes := c.PostForm("notes")

	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	// Blob keys are random per upload; the document id prefix is layout
	// only, so new documents land under a shared prefix.
	ref, size, ok := h.uploadBlob(c, "incoming")
	if !ok {
		return
	}

	doc, err := h.versions.CreateDocument(c.Request.Context(), title, description, ref, size, actorID, notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

func (h *AdminDocumentHandler) DeleteDocument(c *gin.Context) {
	actorID := c.GetUint("userID")
	documentID := c.Param("id")

	if err := h.versions.DeleteDocument(c.Request.Context(), documentID, actorID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *AdminDocumentHandler) ListVersions(c *gin.Context) {
	documentID := c.Param("id")

	versions, err := h.versions.ListVersions(c.Request.Context(), documentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"versions": versions})
}

func (h *AdminDocumentHandler) CreateVersion(c *gin.Context) {
	actorID := c.GetUint("userID")
	documentID := c.Param("id")
	notes := c.PostForm("notes")

	ref, size, ok := h.uploadBlob(c, documentID)
	if !ok {
		return
	}

	version, err := h.versions.CreateVersion(c.Request.Context(), documentID, ref, size, actorID, notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, version)
}

func (h *AdminDocumentHandler) versionNumberParam(c *gin.Context) (int, bool) {
	n, err := strconv.Atoi(c.Param("version"))
	if err != nil || n < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid version number"})
		return 0, false
	}
	return n, true
}

func (h *AdminDocumentHandler) RestoreVersion(c *gin.Context) {
	actorID := c.GetUint("userID")
	documentID := c.Param("id")
	versionNumber, ok := h.versionNumberParam(c)
	if !ok {
		return
	}

	doc, err := h.versions.RestoreVersion(c.Request.Context(), documentID, versionNumber, actorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *AdminDocumentHandler) DeleteVersion(c *gin.Context) {
	actorID := c.GetUint("userID")
	documentID := c.Param("id")
	versionNumber, ok := h.versionNumberParam(c)
	if !ok {
		return
	}

	if err := h.versions.DeleteVersion(c.Request.Context(), documentID, versionNumber, actorID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type syncGrantsRequest struct {
	UserIDs []uint `json:"user_ids"`
}

func (h *AdminDocumentHandler) SyncGrants(c *gin.Context) {
	actorID := c.GetUint("userID")
	documentID := c.Param("id")

	var req syncGrantsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_ids is required"})
		return
	}

	if err := h.grants.SyncGrants(c.Request.Context(), documentID, req.UserIDs, actorID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "synced"})
}

func (h *AdminDocumentHandler) ListGrants(c *gin.Context) {
	documentID := c.Param("id")

	userIDs, err := h.grants.ListGrantedUserIDs(c.Request.Context(), documentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_ids": userIDs})
}

func (h *AdminDocumentHandler) userIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("userID"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return 0, false
	}
	return uint(id), true
}

func (h *AdminDocumentHandler) AddGrant(c *gin.Context) {
	actorID := c.GetUint("userID")
	documentID := c.Param("id")
	userID, ok := h.userIDParam(c)
	if !ok {
		return
	}

	if err := h.grants.Grant(c.Request.Context(), documentID, userID, actorID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "granted"})
}

func (h *AdminDocumentHandler) RevokeGrant(c *gin.Context) {
	actorID := c.GetUint("userID")
	documentID := c.Param("id")
	userID, ok := h.userIDParam(c)
	if !ok {
		return
	}

	if err := h.grants.Revoke(c.Request.Context(), documentID, userID, actorID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "revoked"})
}
