package handler

import (
	"net/http"
	"strconv"
	"strings"

	"fwf/internal/middleware"
	"fwf/pkg/cloudinary"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxPhotoBytes = 10 << 20

type UploadHandler struct {
	cloud cloudinary.Client
	log   *zap.Logger
}

// NewUploadHandler accepts a nil client; uploads then answer 503.
func NewUploadHandler(cloud cloudinary.Client, log *zap.Logger) *UploadHandler {
	return &UploadHandler{cloud: cloud, log: log}
}

// POST /api/cloudinary-sign
func (h *UploadHandler) Sign(c *gin.Context) {
	if h.cloud == nil {
		respondError(c, h.log, cloudinary.ErrNotConfigured)
		return
	}
	sig, err := h.cloud.SignUpload("")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":         true,
		"signature":  sig.Signature,
		"timestamp":  sig.Timestamp,
		"api_key":    sig.APIKey,
		"cloud_name": sig.CloudName,
		"folder":     sig.Folder,
	})
}

// POST /api/member/upload/task-photo (multipart "file"); returns the photo URL
// to send with complete-task.
func (h *UploadHandler) TaskPhoto(c *gin.Context) {
	if h.cloud == nil {
		respondError(c, h.log, cloudinary.ErrNotConfigured)
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	if file.Size > maxPhotoBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large (max 10MB)"})
		return
	}
	if ct := file.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only images are accepted"})
		return
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}
	defer f.Close()

	uid := middleware.GetUserID(c)
	publicID := "task_" + strconv.FormatUint(uint64(uid), 10) + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	res, err := h.cloud.UploadImage(c.Request.Context(), f, publicID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "url": res.URL, "thumbnail_url": res.ThumbnailURL})
}
