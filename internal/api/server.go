// Package api exposes the caption decoder over REST.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"golang.org/x/time/rate"

	"github.com/samcharles93/imcap/internal/beam"
	"github.com/samcharles93/imcap/internal/caption"
)

// CaptionService is the captioning capability the server fronts.
// *caption.Captioner satisfies it; tests substitute stubs.
type CaptionService interface {
	Caption(ctx context.Context, image []byte, opts caption.Options) ([]caption.Caption, error)
}

type Server struct {
	store   *CaptionStore
	service CaptionService
	limiter *rate.Limiter
	clock   func() time.Time
}

func NewServer(store *CaptionStore, service CaptionService) *Server {
	if store == nil {
		store = NewCaptionStore()
	}
	return &Server{
		store:   store,
		service: service,
		limiter: rate.NewLimiter(rate.Inf, 0),
		clock:   time.Now,
	}
}

// SetRateLimit throttles the caption endpoints to perSec requests with the
// given burst.
func (s *Server) SetRateLimit(perSec float64, burst int) {
	s.limiter = rate.NewLimiter(rate.Limit(perSec), burst)
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/healthz", s.handleHealth)

	g := e.Group("/v1", rateLimit(s.limiter))
	g.POST("/captions", s.handleCreateCaption)
	g.GET("/captions/:id", s.handleGetCaption)
	g.DELETE("/captions/:id", s.handleDeleteCaption)
}

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateCaption(c *echo.Context) error {
	if s.service == nil {
		return writeError(c, http.StatusInternalServerError, "server_error", "caption service not configured")
	}
	req, err := decodeCaptionRequest(c)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	opts, err := captionOptions(&req)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}

	caps, err := s.service.Caption(c.Request().Context(), req.Image, opts)
	if err != nil {
		if errors.Is(err, beam.ErrConfig) || errors.Is(err, ErrInvalidRequest) {
			return writeBadRequest(c, err.Error())
		}
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error())
	}

	resp := CaptionResponse{
		ID:        newCaptionID(),
		Object:    "caption",
		CreatedAt: s.clock().Unix(),
		Captions:  make([]CaptionResult, len(caps)),
	}
	for i, cc := range caps {
		resp.Captions[i] = CaptionResult{
			Sentence:   cc.Sentence,
			Logprob:    cc.Logprob,
			Confidence: cc.Confidence,
		}
	}
	s.store.Save(resp)
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGetCaption(c *echo.Context) error {
	id := c.Param("id")
	resp, ok := s.store.Get(id)
	if !ok {
		return writeNotFound(c, "caption "+id+" not found")
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleDeleteCaption(c *echo.Context) error {
	id := c.Param("id")
	if !s.store.Delete(id) {
		return writeNotFound(c, "caption "+id+" not found")
	}
	return c.JSON(http.StatusOK, DeleteCaptionResp{
		ID:      id,
		Object:  "caption.deleted",
		Deleted: true,
	})
}

func captionOptions(req *CaptionRequest) (caption.Options, error) {
	if len(req.Image) == 0 {
		return caption.Options{}, badCaptionRequest("image is required")
	}
	var opts caption.Options
	if req.BeamWidth != nil {
		opts.BeamWidth = *req.BeamWidth
	}
	if req.MaxSteps != nil {
		opts.MaxSteps = *req.MaxSteps
	}
	if req.LengthNormalization != nil {
		opts.LengthNormalization = *req.LengthNormalization
	}
	if req.Limit != nil {
		if *req.Limit < 0 {
			return caption.Options{}, badCaptionRequest("limit must not be negative")
		}
		opts.Limit = *req.Limit
	}
	return opts, nil
}

func rateLimit(limiter *rate.Limiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			if !limiter.Allow() {
				return writeError(c, http.StatusTooManyRequests, "rate_limit_error", "too many requests")
			}
			return next(c)
		}
	}
}
