package ginserver

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"hotelrates/internal/app/commands"
	"hotelrates/internal/app/dto"
	roomsapp "hotelrates/internal/app/handlers/rooms"
	"hotelrates/internal/app/queries"
)

const maxRoomPhotoSizeBytes = 8 * 1024 * 1024

type RoomHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

func (h RoomHandler) List(c *gin.Context) {
	q := roomsapp.ListRoomsQuery{Category: c.Query("category")}
	result, err := queries.Ask[roomsapp.ListRoomsQuery, dto.RoomCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h RoomHandler) Upsert(c *gin.Context) {
	var req dto.Room
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.ID = c.Param("id")
	result, err := commands.Dispatch[roomsapp.UpsertRoomCommand, *dto.Room](c.Request.Context(), h.Commands, roomsapp.UpsertRoomCommand{Room: req})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h RoomHandler) UploadPhoto(c *gin.Context) {
	roomID := strings.TrimSpace(c.Param("id"))
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("file is required: %v", err)})
		return
	}
	if fileHeader.Size > maxRoomPhotoSizeBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("file too large (max %d MB)", maxRoomPhotoSizeBytes/1024/1024)})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxRoomPhotoSizeBytes+1))
	if err != nil {
		writeError(c, fmt.Errorf("cannot read file: %w", err))
		return
	}
	if len(data) == 0 || len(data) > maxRoomPhotoSizeBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is empty or too large"})
		return
	}
	contentType := http.DetectContentType(data)
	if !isAllowedImageType(contentType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported content type: " + contentType})
		return
	}

	cmd := roomsapp.UploadRoomPhotoCommand{
		RoomID:      roomID,
		ObjectKey:   buildPhotoObjectKey(roomID, fileHeader.Filename, contentType),
		ContentType: contentType,
		Reader:      bytes.NewReader(data),
	}
	result, err := commands.Dispatch[roomsapp.UploadRoomPhotoCommand, *dto.Room](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func isAllowedImageType(contentType string) bool {
	switch strings.ToLower(contentType) {
	case "image/jpeg", "image/png", "image/webp":
		return true
	default:
		return false
	}
}

func buildPhotoObjectKey(roomID, filename, contentType string) string {
	ext := ""
	switch strings.ToLower(contentType) {
	case "image/jpeg":
		ext = ".jpg"
	case "image/png":
		ext = ".png"
	case "image/webp":
		ext = ".webp"
	default:
		ext = strings.ToLower(path.Ext(filename))
	}
	return fmt.Sprintf("rooms/%s/%s%s", sanitizePathToken(roomID), uuid.NewString(), ext)
}

func sanitizePathToken(value string) string {
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	if result := strings.Trim(b.String(), "-"); result != "" {
		return result
	}
	return "room"
}
