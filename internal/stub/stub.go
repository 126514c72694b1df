package stub

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Backend modes served by the stub.
const (
	ModeVideo = "video"
	ModeChat  = "chat"
	ModeImage = "image"
)

const defaultJobDuration = 20 * time.Second

// Options configure a stub server.
type Options struct {
	Mode        string
	Logger      *slog.Logger
	JobDuration time.Duration    // time a video job takes to complete
	Now         func() time.Time // clock; defaults to time.Now
}

// Server is an in-memory generation backend.
type Server struct {
	mode        string
	logger      *slog.Logger
	jobDuration time.Duration
	now         func() time.Time

	mu      sync.Mutex
	jobs    map[string]*videoJob
	history []chatTurn
}

// New validates opts and builds a Server.
func New(opts Options) (*Server, error) {
	mode := strings.ToLower(strings.TrimSpace(opts.Mode))
	if mode == "" {
		mode = ModeVideo
	}
	switch mode {
	case ModeVideo, ModeChat, ModeImage:
	default:
		return nil, fmt.Errorf("unknown stub mode %q", opts.Mode)
	}

	s := &Server{
		mode:        mode,
		logger:      opts.Logger,
		jobDuration: opts.JobDuration,
		now:         opts.Now,
		jobs:        make(map[string]*videoJob),
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.jobDuration <= 0 {
		s.jobDuration = defaultJobDuration
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// Mode returns the backend flavour served.
func (s *Server) Mode() string {
	return s.mode
}

// Router builds the gin engine for the configured mode.
func (s *Server) Router() *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(s.logger))

	switch s.mode {
	case ModeVideo:
		r.POST("/generate", s.createVideoJob)
		r.GET("/status", s.videoHealth)
		r.GET("/status/:job_id", s.videoJobStatus)
		r.GET("/download/:job_id", s.downloadVideo)
	case ModeChat:
		r.POST("/chat", s.chat)
		r.POST("/clear", s.clearChat)
		r.GET("/status", s.chatHealth)
	case ModeImage:
		r.POST("/generate", s.generateImage)
		r.GET("/status", s.imageHealth)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
	return r
}
