package stub

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type videoRequest struct {
	Prompt     *string `json:"prompt"`
	Model      string  `json:"model"`
	Duration   int     `json:"duration"`
	Resolution string  `json:"resolution"`
}

type videoJob struct {
	id         string
	prompt     string
	model      string
	duration   int
	resolution string
	created    time.Time
	fail       bool
}

// stage is one step of the simulated pipeline. Stages are entered when the
// elapsed fraction of the job reaches from.
type stage struct {
	from    float64
	message string
}

var videoStages = []stage{
	{0.0, "Loading model"},
	{0.1, "Preparing generation"},
	{0.2, "Generating frames"},
	{0.8, "Saving video"},
}

// failAt is the elapsed fraction at which a failing job reports its error.
const failAt = 0.5

func (s *Server) createVideoJob(c *gin.Context) {
	var req videoRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Prompt == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrNoPrompt.Error()})
		return
	}
	prompt := strings.TrimSpace(*req.Prompt)
	if prompt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrEmptyPrompt.Error()})
		return
	}

	job := &videoJob{
		id:         uuid.New().String(),
		prompt:     prompt,
		model:      orDefault(req.Model, "zeroscope"),
		duration:   req.Duration,
		resolution: orDefault(req.Resolution, "576x320"),
		created:    s.now(),
		fail:       strings.Contains(strings.ToLower(prompt), "fail"),
	}
	if job.duration <= 0 {
		job.duration = 3
	}

	s.mu.Lock()
	s.jobs[job.id] = job
	s.mu.Unlock()

	s.logger.Info("video job created",
		slog.String("job_id", job.id),
		slog.String("model", job.model),
		slog.Int("duration", job.duration),
		slog.String("resolution", job.resolution),
	)
	c.JSON(http.StatusOK, gin.H{"job_id": job.id})
}

func (s *Server) videoJobStatus(c *gin.Context) {
	job, ok := s.lookupJob(c.Param("job_id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": ErrJobNotFound.Error()})
		return
	}
	c.JSON(http.StatusOK, s.statusBody(job))
}

func (s *Server) downloadVideo(c *gin.Context) {
	job, ok := s.lookupJob(c.Param("job_id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": ErrJobNotFound.Error()})
		return
	}
	if job.fail || s.fraction(job) < 1 {
		c.JSON(http.StatusNotFound, gin.H{"error": ErrNotReady.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="video_`+job.id+`.mp4"`)
	c.Data(http.StatusOK, "video/mp4", fakeMP4(job))
}

func (s *Server) videoHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"model_loaded": true,
		"device":       "cpu",
		"model_name":   "zeroscope",
	})
}

func (s *Server) lookupJob(id string) (*videoJob, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	return job, ok
}

func (s *Server) fraction(job *videoJob) float64 {
	elapsed := s.now().Sub(job.created)
	if elapsed <= 0 {
		return 0
	}
	return float64(elapsed) / float64(s.jobDuration)
}

func (s *Server) statusBody(job *videoJob) gin.H {
	frac := s.fraction(job)

	if job.fail && frac >= failAt {
		return gin.H{
			"job_id":   job.id,
			"status":   "error",
			"progress": int(failAt * 100),
			"message":  "Video generation failed: CUDA out of memory",
			"error":    "Video generation failed: CUDA out of memory",
		}
	}

	if frac >= 1 {
		return gin.H{
			"job_id":       job.id,
			"status":       "completed",
			"progress":     100,
			"message":      "Video generated successfully",
			"download_url": "/download/" + job.id,
			"prompt":       job.prompt,
			"model":        job.model,
			"duration":     job.duration,
			"resolution":   job.resolution,
		}
	}

	message := videoStages[0].message
	for _, st := range videoStages {
		if frac >= st.from {
			message = st.message
		}
	}
	status := "processing"
	if frac < videoStages[1].from/2 {
		status = "pending"
	}
	progress := int(frac * 100)
	if progress > 99 {
		progress = 99
	}
	return gin.H{
		"job_id":   job.id,
		"status":   status,
		"progress": progress,
		"message":  message,
	}
}

// fakeMP4 returns a minimal ISO-BMFF header followed by the prompt, enough
// for file type sniffers to recognise the download.
func fakeMP4(job *videoJob) []byte {
	header := []byte{0, 0, 0, 0x18, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm', 0, 0, 2, 0, 'i', 's', 'o', 'm', 'm', 'p', '4', '1'}
	return append(header, []byte(job.prompt)...)
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}
