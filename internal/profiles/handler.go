package profiles

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"osapio-backend/internal/shared/apperr"
	"osapio-backend/internal/shared/server/middleware"
	"osapio-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes expects rg to be behind RequireAuth.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.me)
	rg.PUT("/me", h.update)
}

func (h *Handler) me(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		respond.Err(c, apperr.ErrUnauthenticated)
		return
	}
	p, err := h.Svc.GetOrCreate(c.Request.Context(), claims)
	if err != nil {
		respond.Err(c, err)
		return
	}
	respond.OK(c, p)
}

// updateRequest is the allow-list for PUT /me; other keys are ignored.
type updateRequest struct {
	DisplayName *string `json:"display_name" binding:"omitempty,max=120"`
}

func (h *Handler) update(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Err(c, apperr.Wrap(ErrInvalid, err))
		return
	}
	p, err := h.Svc.Update(c.Request.Context(), middleware.UserIDFromContext(c), ProfileUpdate{DisplayName: req.DisplayName})
	if err != nil {
		respond.Err(c, err)
		return
	}
	respond.Message(c, http.StatusOK, "Profile updated successfully", gin.H{"profile": p})
}
