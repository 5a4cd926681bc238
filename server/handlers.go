package server

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/midhat81/Accent-Detection/accent"
	"github.com/midhat81/Accent-Detection/clients"
	"github.com/midhat81/Accent-Detection/media"
	"github.com/midhat81/Accent-Detection/orchestrator"
)

// ClassifyRequest carries raw text to score. It is lower-cased before
// scoring.
type ClassifyRequest struct {
	Text string `json:"text"`
}

type ClassifyResponse struct {
	accent.Classification
	WordCount int                  `json:"word_count"`
	Scores    []accent.ScoreResult `json:"scores"`
}

// AnalyzeRequest is the JSON form of /analyze; uploads use multipart field
// "file" instead.
type AnalyzeRequest struct {
	URL string `json:"url" binding:"required"`
}

func (s *Server) profilesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.scorer.Profiles())
}

func (s *Server) classifyHandler(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}
	text := strings.ToLower(req.Text)
	c.JSON(http.StatusOK, ClassifyResponse{
		Classification: s.scorer.Classify(text),
		WordCount:      accent.WordCount(text),
		Scores:         s.scorer.Ranked(text),
	})
}

func (s *Server) analyzeHandler(c *gin.Context) {
	var source string
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if s.maxUpload > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload)
		}
		hdr, err := c.FormFile("file")
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("Upload exceeds %d MiB", tooLarge.Limit>>20)})
			return
		}
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Upload a video file in field \"file\": " + err.Error()})
			return
		}
		if !media.AllowedUpload(hdr.Filename) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported file type, use one of " + strings.Join(media.UploadExts, ", ")})
			return
		}
		f, err := hdr.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		defer f.Close()
		path, err := media.SaveUpload(f, hdr.Filename, s.scratch)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		defer os.RemoveAll(filepath.Dir(path))
		source = path
	} else {
		var req AnalyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
			return
		}
		if !clients.IsVideoURL(req.URL) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter a valid video URL"})
			return
		}
		source = req.URL
	}

	res := s.analyzer.Run(c.Request.Context(), source)
	c.JSON(statusFor(res), res)
}

func statusFor(res *orchestrator.Result) int {
	if res.Success {
		return http.StatusOK
	}
	return http.StatusUnprocessableEntity
}
