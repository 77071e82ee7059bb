package mockapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Photo is a gallery entry.
type Photo struct {
	ID         int       `json:"id"`
	Title      string    `json:"title"`
	Uploader   string    `json:"uploader"`
	Price      string    `json:"price"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type uploadRequest struct {
	Title string `json:"title"`
	Price string `json:"price"`
}

type downloadResponse struct {
	ID  int    `json:"id"`
	URL string `json:"url"`
}

func seedPhotos() []Photo {
	uploaded := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	return []Photo{
		{ID: 1, Title: "Harbour at dawn", Uploader: "demo-uploader", Price: "4.99", UploadedAt: uploaded},
		{ID: 2, Title: "Desert road", Uploader: "demo-uploader", Price: "2.50", UploadedAt: uploaded},
		{ID: 3, Title: "City lights", Uploader: "demo-uploader", Price: "7.00", UploadedAt: uploaded},
	}
}

func (s *Server) handleGallery(c *gin.Context) {
	s.photosLock.RLock()
	defer s.photosLock.RUnlock()

	photos := make([]Photo, len(s.photos))
	copy(photos, s.photos)
	c.JSON(http.StatusOK, photos)
}

func (s *Server) handleDownload(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, notFound("photo", c.Param("id")))
		return
	}

	s.photosLock.RLock()
	defer s.photosLock.RUnlock()
	for _, p := range s.photos {
		if p.ID == id {
			c.JSON(http.StatusOK, downloadResponse{ID: p.ID, URL: fmt.Sprintf("/media/photos/%d.jpg", p.ID)})
			return
		}
	}
	c.JSON(http.StatusNotFound, notFound("photo", id))
}

func (s *Server) handleUpload(c *gin.Context) {
	var req uploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("malformed request body"))
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		errs := fieldErrors{}
		errs.add("title", msgRequired)
		c.JSON(http.StatusBadRequest, errs)
		return
	}

	s.photosLock.Lock()
	defer s.photosLock.Unlock()

	photo := Photo{
		ID:         s.nextPhoto,
		Title:      strings.TrimSpace(req.Title),
		Uploader:   usernameFrom(c),
		Price:      req.Price,
		UploadedAt: s.nowTime(),
	}
	s.nextPhoto++
	s.photos = append(s.photos, photo)
	c.JSON(http.StatusCreated, photo)
}
