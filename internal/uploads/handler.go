package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"osapio-backend/internal/shared/apperr"
	"osapio-backend/internal/shared/server/middleware"
	"osapio-backend/internal/shared/server/respond"
	"osapio-backend/internal/shared/storage/object"
	"osapio-backend/internal/shared/telemetry"
	"osapio-backend/internal/shared/util"
	"osapio-backend/internal/shared/validation"
)

// Downloader fetches and streams stored objects.
type Downloader interface {
	Fetch(ctx context.Context, path string) (*object.Object, error)
	Stream(w io.Writer, obj *object.Object) (int64, error)
}

type Handler struct {
	Svc        *Service
	Downloader Downloader
}

func NewHandler(svc *Service, dl Downloader) *Handler {
	validation.Register()
	return &Handler{Svc: svc, Downloader: dl}
}

// RegisterRoutes expects rg to be behind RequireAuth.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/upload-file", h.uploadFile)
	rg.POST("/upload-record", h.createRecord)
	rg.GET("/my-uploads", h.list)
	rg.GET("/upload-record/:id", h.get)
	rg.DELETE("/upload-record/:id", h.delete)
	rg.GET("/upload-record/:id/download", h.download)
	rg.PUT("/upload-record/:id/analysis", h.setAnalysis)
}

func (h *Handler) uploadFile(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	// multipart framing needs headroom above the file cap
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxFileSize+1<<20)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large") {
			respond.Err(c, ErrTooLarge)
			return
		}
		respond.Err(c, apperr.Wrapf(ErrInvalid, "file is required"))
		return
	}
	if fileHeader.Size > MaxFileSize {
		respond.Err(c, ErrTooLarge)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Err(c, apperr.Wrapf(ErrInvalid, "unable to read file"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxFileSize+1))
	if err != nil {
		respond.Err(c, apperr.Wrapf(ErrInvalid, "unable to read file"))
		return
	}

	u, err := h.Svc.CreateFromFile(c.Request.Context(), userID, FileInput{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		respond.Err(c, err)
		return
	}
	c.Set(middleware.UploadIDKey, u.ID)
	respond.Message(c, http.StatusCreated, "File uploaded successfully", gin.H{
		"upload_id": u.ID,
		"user_id":   userID,
		"upload":    u,
	})
}

// createRecordRequest also binds from the query string, which older clients
// use for filename and file_size.
type createRecordRequest struct {
	Filename    string `json:"filename" form:"filename" binding:"required,safefilename"`
	FileSize    int64  `json:"file_size" form:"file_size" binding:"required,gt=0"`
	StoragePath string `json:"storage_path" form:"storage_path"`
	ContentType string `json:"content_type" form:"content_type"`
}

func (h *Handler) createRecord(c *gin.Context) {
	var req createRecordRequest
	var err error
	if c.Request.ContentLength != 0 && strings.HasPrefix(c.ContentType(), "application/json") {
		err = c.ShouldBindJSON(&req)
	} else {
		err = c.ShouldBindQuery(&req)
	}
	if err != nil {
		respond.Err(c, apperr.Wrap(ErrInvalid, err))
		return
	}

	userID := middleware.UserIDFromContext(c)
	u, err := h.Svc.Create(c.Request.Context(), userID, CreateInput{
		Filename:    req.Filename,
		FileSize:    req.FileSize,
		StoragePath: req.StoragePath,
		ContentType: req.ContentType,
	})
	if err != nil {
		respond.Err(c, err)
		return
	}
	c.Set(middleware.UploadIDKey, u.ID)
	respond.Message(c, http.StatusCreated, "Upload record created", gin.H{
		"upload_id": u.ID,
		"user_id":   userID,
		"upload":    u,
	})
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Err(c, err)
		return
	}
	respond.OK(c, items)
}

func (h *Handler) get(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.UploadIDKey, id)
	u, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), id)
	if err != nil {
		respond.Err(c, err)
		return
	}
	respond.OK(c, u)
}

func (h *Handler) delete(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.UploadIDKey, id)
	if err := h.Svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), id); err != nil {
		respond.Err(c, err)
		return
	}
	respond.Message(c, http.StatusOK, "Upload deleted successfully", nil)
}

func (h *Handler) download(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.UploadIDKey, id)
	u, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), id)
	if err != nil {
		respond.Err(c, err)
		return
	}
	var path string
	if u.StoragePath != nil {
		path = *u.StoragePath
	}
	obj, err := h.Downloader.Fetch(c.Request.Context(), path)
	if err != nil {
		respond.Err(c, err)
		return
	}
	defer obj.Body.Close()

	contentType := obj.ContentType
	if contentType == "" && u.ContentType != nil {
		contentType = *u.ContentType
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, util.DispositionName(u.Filename)))
	if obj.ContentLength >= 0 {
		c.Header("Content-Length", strconv.FormatInt(obj.ContentLength, 10))
	}
	c.Status(http.StatusOK)

	n, err := h.Downloader.Stream(c.Writer, obj)
	if err != nil {
		// headers are gone; the client sees a truncated body
		telemetry.Warn("upload.download_interrupted", map[string]any{
			"upload_id": id,
			"bytes":     n,
			"error":     err,
		})
		c.Abort()
	}
}

type setAnalysisRequest struct {
	AnalysisStatus Status  `json:"analysis_status" binding:"required"`
	AnalysisResult *string `json:"analysis_result"`
}

func (h *Handler) setAnalysis(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.UploadIDKey, id)
	var req setAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Err(c, apperr.Wrap(ErrInvalid, err))
		return
	}
	u, err := h.Svc.SetStatus(c.Request.Context(), middleware.UserIDFromContext(c), id, req.AnalysisStatus, req.AnalysisResult)
	if err != nil {
		respond.Err(c, err)
		return
	}
	c.Set(middleware.StatusTransitionKey, string(u.AnalysisStatus))
	respond.Message(c, http.StatusOK, "Analysis updated successfully", gin.H{"upload": u})
}
