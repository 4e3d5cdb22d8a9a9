package analysis

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"osapio-backend/internal/shared/apperr"
	"osapio-backend/internal/shared/server/middleware"
	"osapio-backend/internal/shared/server/respond"
	"osapio-backend/internal/uploads"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes expects rg to be behind RequireAuth. mw runs before the
// analyze handler, typically a rate limiter.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, mw ...gin.HandlerFunc) {
	handlers := append(append([]gin.HandlerFunc{}, mw...), h.analyze)
	rg.POST("/upload-record/:id/analyze", handlers...)
}

func (h *Handler) analyze(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.UploadIDKey, id)

	var req Request
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respond.Err(c, apperr.Wrap(uploads.ErrInvalid, err))
		return
	}
	u, err := h.Svc.Analyze(c.Request.Context(), middleware.UserIDFromContext(c), id, req)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindUpstream {
			c.Set(middleware.StatusTransitionKey, "processing->failed")
		}
		respond.Err(c, err)
		return
	}
	c.Set(middleware.StatusTransitionKey, "processing->completed")
	respond.OK(c, u)
}
