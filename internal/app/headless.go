package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/five82/reel/internal/config"
	"github.com/five82/reel/internal/genapi"
	"github.com/five82/reel/internal/jobs"
	"github.com/five82/reel/internal/output"
)

// headless runs a single request without the TUI and reports to out.
type headless struct {
	cfg    config.Config
	client *genapi.Client
	opts   Options
	out    io.Writer
	logger *slog.Logger
}

func (h headless) run(ctx context.Context) error {
	switch h.cfg.Mode {
	case config.ModeChat:
		return h.chat(ctx)
	case config.ModeImage:
		return h.image(ctx)
	default:
		return h.video(ctx)
	}
}

func (h headless) video(ctx context.Context) error {
	req := videoRequest(h.opts)
	if err := req.Validate(); err != nil {
		return err
	}

	jc := jobs.New(h.client,
		jobs.WithInterval(h.cfg.PollInterval),
		jobs.WithRequestTimeout(h.cfg.RequestTimeout),
		jobs.WithLogger(h.logger),
	)

	fmt.Fprintf(h.out, "Generating %ds %s video with %s (estimated %s)\n",
		req.Duration, req.Resolution, genapi.ModelDisplayName(req.Model),
		genapi.EstimateRange(req.Duration, req.Resolution, req.Model))

	jobID, err := jc.Submit(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(h.out, "Job %s submitted\n", jobID)

	var (
		result  genapi.JobStatus
		pollErr error
	)
	session := jc.StartPolling(ctx, jobID, jobs.Callbacks{
		OnProgress: func(s genapi.JobStatus) {
			fmt.Fprintf(h.out, "[%3d%%] %s\n", s.ClampedProgress(), strings.TrimSpace(s.Message))
		},
		OnComplete: func(s genapi.JobStatus) {
			result = s
		},
		OnError: func(err error) {
			pollErr = err
		},
	})

	switch session.Wait() {
	case jobs.StateCompleted:
	case jobs.StateFailed:
		return pollErr
	default:
		if err := ctx.Err(); err != nil {
			return err
		}
		return errors.New("polling cancelled")
	}

	fmt.Fprintf(h.out, "[100%%] Video generated successfully\n")
	path, err := output.SaveVideo(ctx, h.client, h.cfg.OutputDir, jobID, result.ResultURL())
	if err != nil {
		return fmt.Errorf("save video: %w", err)
	}
	h.logger.Info("video saved", slog.String("job_id", jobID), slog.String("path", path))
	fmt.Fprintf(h.out, "Saved %s\n", path)
	return nil
}

func (h headless) chat(ctx context.Context) error {
	if err := genapi.ValidateMessage(h.opts.Prompt); err != nil {
		return err
	}
	ctx, cancel := withOptionalTimeout(ctx, h.cfg.GenerateTimeout)
	defer cancel()

	reply, err := h.client.Chat(ctx, strings.TrimSpace(h.opts.Prompt))
	if err != nil {
		return fmt.Errorf("chat: %w", err)
	}
	fmt.Fprintln(h.out, reply.Response)
	return nil
}

func (h headless) image(ctx context.Context) error {
	req, err := imageRequest(h.opts)
	if err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}
	ctx, cancel := withOptionalTimeout(ctx, h.cfg.GenerateTimeout)
	defer cancel()

	res, err := h.client.GenerateImage(ctx, req)
	if err != nil {
		return fmt.Errorf("generate image: %w", err)
	}
	mime, data, err := res.Decode()
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	path, err := output.SaveImage(h.cfg.OutputDir, mime, data, time.Now())
	if err != nil {
		return fmt.Errorf("save image: %w", err)
	}
	h.logger.Info("image saved", slog.String("path", path), slog.Int("bytes", len(data)))
	fmt.Fprintf(h.out, "Saved %s\n", path)
	return nil
}

func videoRequest(opts Options) genapi.VideoRequest {
	req := genapi.VideoRequest{
		Prompt:     strings.TrimSpace(opts.Prompt),
		Model:      strings.ToLower(strings.TrimSpace(opts.Model)),
		Duration:   opts.Duration,
		Resolution: strings.TrimSpace(opts.Resolution),
	}
	if req.Model == "" {
		req.Model = "zeroscope"
	}
	if req.Duration <= 0 {
		req.Duration = 3
	}
	if req.Resolution == "" {
		if m, ok := genapi.LookupVideoModel(req.Model); ok {
			req.Resolution = m.Resolutions[0]
		}
	}
	return req
}

func imageRequest(opts Options) (genapi.ImageRequest, error) {
	req := genapi.ImageRequest{
		Prompt:        strings.TrimSpace(opts.Prompt),
		Steps:         opts.Steps,
		GuidanceScale: opts.Guidance,
		Width:         512,
		Height:        512,
	}
	if req.Steps <= 0 {
		req.Steps = 20
	}
	if req.GuidanceScale <= 0 {
		req.GuidanceScale = 7.5
	}
	if size := strings.TrimSpace(opts.Size); size != "" {
		w, h, err := genapi.ParseSize(size)
		if err != nil {
			return genapi.ImageRequest{}, err
		}
		req.Width, req.Height = w, h
	}
	return req, nil
}

func withOptionalTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
