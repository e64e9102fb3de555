package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studentportal/internal/model"
	"studentportal/internal/service"
)

type VideoHandler struct {
	catalog *service.VideoCatalog
}

func NewVideoHandler(catalog *service.VideoCatalog) *VideoHandler {
	return &VideoHandler{catalog: catalog}
}

type videoView struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Subject   string `json:"subject"`
	URL       string `json:"url"`
	Thumbnail string `json:"thumbnail"`
}

func newVideoView(v model.Video) videoView {
	return videoView{
		ID:        v.ID,
		Title:     v.Title,
		Subject:   v.Subject,
		URL:       v.WatchURL(),
		Thumbnail: v.ThumbnailURL(),
	}
}

// List GET /api/videos
func (h *VideoHandler) List(c *gin.Context) {
	sel := h.catalog.Pick()

	upcoming := make([]videoView, 0, len(sel.Upcoming))
	for _, v := range sel.Upcoming {
		upcoming = append(upcoming, newVideoView(v))
	}
	c.JSON(http.StatusOK, gin.H{
		"current":  newVideoView(sel.Current),
		"upcoming": upcoming,
	})
}
