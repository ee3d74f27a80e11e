package handler

import (
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AnTengye/contractdesk/backend/pkg/logger"
	"github.com/AnTengye/contractdesk/backend/service"
)

// UploadAttachment stores the multipart "file" field as the record's
// attachment, replacing any previous one
func (h *LedgerHandler) UploadAttachment(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	id := c.Param("id")
	att, err := h.attachments.Upload(c.Request.Context(), h.store, id, header.Filename, contentType, header.Size, file)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info(c.Request.Context(), "attachment uploaded",
		"contract_id", id, "filename", att.Filename, "size", att.Size)
	c.JSON(http.StatusOK, att)
}

// LinkAttachment points the record at an external document URL
func (h *LedgerHandler) LinkAttachment(c *gin.Context) {
	var in linkInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	att, err := h.attachments.Link(c.Request.Context(), h.store, c.Param("id"), in.URL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, att)
}

// RemoveAttachment clears the attachment and releases its blob
func (h *LedgerHandler) RemoveAttachment(c *gin.Context) {
	if err := h.attachments.Remove(c.Request.Context(), h.store, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Attachment removed"})
}

// LocateAttachment tells the client where to download the attachment
func (h *LedgerHandler) LocateAttachment(c *gin.Context) {
	loc, err := h.attachments.Locate(c.Request.Context(), h.store, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, loc)
}

// BlobHandler serves attachments kept by the in-memory backend
type BlobHandler struct {
	blobs *service.MemoryAttachmentStore
}

// NewBlobHandler serves downloads from blobs
func NewBlobHandler(blobs *service.MemoryAttachmentStore) *BlobHandler {
	return &BlobHandler{blobs: blobs}
}

// Download serves GET /api/attachments/*key
func (h *BlobHandler) Download(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	data, contentType, err := h.blobs.Open(key)
	if err != nil {
		respondError(c, err)
		return
	}

	name := key[strings.LastIndex(key, "/")+1:]
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": name})
	if disposition == "" {
		disposition = "attachment; filename*=UTF-8''" + url.PathEscape(name)
	}
	c.Header("Content-Disposition", disposition)
	c.Data(http.StatusOK, contentType, data)
}
