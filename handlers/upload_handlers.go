package handlers

import (
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"craftfolio/api/store"
)

const maxUploadBytes = 10 << 20 // 10 MiB

type UploadHandlers struct {
	Media *store.MediaStore
}

func NewUploadHandlers(media *store.MediaStore) *UploadHandlers {
	return &UploadHandlers{Media: media}
}

// sanitizeFilename keeps the base name and replaces anything outside
// [a-zA-Z0-9._-] with a hyphen.
func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "upload"
	}
	return b.String()
}

// UploadMedia stores one multipart file and returns its public URL. The
// timestamp prefix keeps concurrent uploads of the same filename apart.
func (h *UploadHandlers) UploadMedia(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A 'file' form field is required"})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File exceeds the 10MB upload limit"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Printf("Error opening uploaded file %s: %v", fileHeader.Filename, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := fmt.Sprintf("uploads/%d-%s", time.Now().UnixNano(), sanitizeFilename(fileHeader.Filename))

	url, err := h.Media.Put(c.Request.Context(), key, contentType, file)
	if err != nil {
		log.Printf("Error storing uploaded file %s: %v", fileHeader.Filename, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store uploaded file"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": gin.H{"url": url}})
}

// DeleteMedia removes a previously uploaded blob by its public URL.
func (h *UploadHandlers) DeleteMedia(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A 'url' query parameter is required"})
		return
	}

	if err := h.Media.Delete(c.Request.Context(), url); err != nil {
		log.Printf("Error deleting media %s: %v", url, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to delete media"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{}})
}
