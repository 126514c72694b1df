package stub

import (
	"bytes"
	"encoding/base64"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const maxImageSide = 1024

type imageRequest struct {
	Prompt        *string `json:"prompt"`
	Steps         int     `json:"steps"`
	GuidanceScale float64 `json:"guidance_scale"`
	Width         int     `json:"width"`
	Height        int     `json:"height"`
}

func (s *Server) generateImage(c *gin.Context) {
	var req imageRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Prompt == nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": ErrNoPrompt.Error()})
		return
	}
	prompt := strings.TrimSpace(*req.Prompt)
	if prompt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": ErrEmptyPrompt.Error()})
		return
	}
	width, height := clampSide(req.Width), clampSide(req.Height)

	var buf bytes.Buffer
	if err := png.Encode(&buf, render(prompt, width, height)); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to generate image"})
		return
	}

	s.logger.Info("image generated",
		slog.Int("width", width),
		slog.Int("height", height),
		slog.Int("steps", req.Steps),
		slog.Float64("guidance_scale", req.GuidanceScale),
	)
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"image":     "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
		"prompt":    prompt,
		"timestamp": s.now().Format(time.RFC3339),
	})
}

func (s *Server) imageHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"model_loaded": true,
		"device":       "cpu",
		"model_name":   "reel-stub-image",
	})
}

// render paints a diagonal gradient whose colours derive from the prompt.
func render(prompt string, width, height int) image.Image {
	h := fnv.New32a()
	_, _ = h.Write([]byte(prompt))
	seed := h.Sum32()
	r0, g0, b0 := uint8(seed), uint8(seed>>8), uint8(seed>>16)

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			t := uint8((x + y) * 255 / (width + height))
			img.Set(x, y, color.RGBA{R: r0 ^ t, G: g0 + t/2, B: b0 - t/3, A: 255})
		}
	}
	return img
}

func clampSide(v int) int {
	switch {
	case v <= 0:
		return 512
	case v > maxImageSide:
		return maxImageSide
	}
	return v
}
