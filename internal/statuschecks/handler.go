package statuschecks

import (
	"github.com/gin-gonic/gin"

	"osapio-backend/internal/shared/apperr"
	"osapio-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the unauthenticated status routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/status", h.create)
	rg.GET("/status", h.list)
}

type createRequest struct {
	ClientName string `json:"client_name" binding:"required,max=200"`
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Err(c, apperr.Wrap(ErrInvalid, err))
		return
	}
	sc, err := h.Svc.Create(c.Request.Context(), req.ClientName)
	if err != nil {
		respond.Err(c, err)
		return
	}
	respond.OK(c, sc)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.Svc.List(c.Request.Context())
	if err != nil {
		respond.Err(c, err)
		return
	}
	respond.OK(c, items)
}
