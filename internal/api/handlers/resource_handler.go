package handlers

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/notehub/notehub/internal/models"
	"github.com/notehub/notehub/internal/policy"
	"github.com/notehub/notehub/internal/services"
	"github.com/notehub/notehub/internal/utils"
)

type ResourceHandler struct {
	svc services.ResourceService
}

func NewResourceHandler(svc services.ResourceService) *ResourceHandler {
	return &ResourceHandler{svc: svc}
}

func (h *ResourceHandler) Upload(c *gin.Context) {
	const op = "ResourceHandler.Upload"

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "missing multipart field 'file'", err))
		return
	}

	semester, err := strconv.Atoi(c.PostForm("semester"))
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "semester must be a number", err))
		return
	}
	year, err := strconv.Atoi(c.PostForm("year"))
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "year must be a number", err))
		return
	}

	var tags []string
	if raw := c.PostForm("tags"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &tags); err != nil {
			writeError(c, utils.E(utils.CodeInvalidArgument, op, "tags must be a JSON array of strings", err))
			return
		}
	}

	in := services.CreateResourceInput{
		Title:        c.PostForm("title"),
		Subject:      c.PostForm("subject"),
		Semester:     semester,
		ResourceType: models.ResourceType(c.PostForm("resource_type")),
		Year:         year,
		Description:  c.PostForm("description"),
		Tags:         tags,
		Privacy:      models.Privacy(c.PostForm("privacy")),
	}

	file, err := fh.Open()
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to open upload", err))
		return
	}
	defer file.Close()

	meta := services.FileInput{
		Name:        fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
	}

	res, err := h.svc.Create(c.Request.Context(), userID, in, meta, file)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func browseQuery(c *gin.Context) (services.BrowseQuery, error) {
	q := services.BrowseQuery{
		Type:    c.Query("type"),
		Subject: c.Query("subject"),
		Branch:  c.Query("branch"),
		Privacy: c.Query("privacy"),
		Search:  c.Query("search"),
		Sort:    c.DefaultQuery("sort", "latest"),
	}
	if v := c.Query("semester"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return q, fmt.Errorf("semester must be a number: %w", err)
		}
		q.Semester = n
	}
	if v := c.Query("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return q, fmt.Errorf("year must be a number: %w", err)
		}
		q.Year = n
	}
	return q, nil
}

func (h *ResourceHandler) Browse(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	q, err := browseQuery(c)
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ResourceHandler.Browse", err.Error(), err))
		return
	}

	items, err := h.svc.Browse(c.Request.Context(), userID, q)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"resources": items})
}

func (h *ResourceHandler) MyResources(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	q, err := browseQuery(c)
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ResourceHandler.MyResources", err.Error(), err))
		return
	}

	items, err := h.svc.MyResources(c.Request.Context(), userID, q)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"resources": items})
}

func (h *ResourceHandler) Get(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	res, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *ResourceHandler) View(c *gin.Context) {
	h.stream(c, policy.ActionView)
}

func (h *ResourceHandler) Download(c *gin.Context) {
	h.stream(c, policy.ActionDownload)
}

func (h *ResourceHandler) stream(c *gin.Context, action policy.Action) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	res, rc, err := h.svc.OpenFile(c.Request.Context(), userID, c.Param("id"), action)
	if err != nil {
		writeError(c, err)
		return
	}
	defer rc.Close()

	disposition := "inline"
	if action == policy.ActionDownload {
		disposition = "attachment"
	}
	extra := map[string]string{
		"Content-Disposition": mime.FormatMediaType(disposition, map[string]string{"filename": res.FileName}),
	}

	contentType := res.FileType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, res.FileSize, contentType, rc, extra)
}

type UpdateResourceRequest struct {
	Title        *string   `json:"title,omitempty"`
	Subject      *string   `json:"subject,omitempty"`
	Semester     *int      `json:"semester,omitempty"`
	ResourceType *string   `json:"resource_type,omitempty"`
	Year         *int      `json:"year,omitempty"`
	Description  *string   `json:"description,omitempty"`
	Tags         *[]string `json:"tags,omitempty"`
	Privacy      *string   `json:"privacy,omitempty"`
}

func (h *ResourceHandler) Update(c *gin.Context) {
	const op = "ResourceHandler.Update"

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req UpdateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "invalid request body", err))
		return
	}

	in := services.UpdateResourceInput{
		Title:       req.Title,
		Subject:     req.Subject,
		Semester:    req.Semester,
		Year:        req.Year,
		Description: req.Description,
		Tags:        req.Tags,
	}
	if req.ResourceType != nil {
		rt := models.ResourceType(strings.TrimSpace(*req.ResourceType))
		in.ResourceType = &rt
	}
	if req.Privacy != nil {
		p := models.Privacy(strings.TrimSpace(*req.Privacy))
		in.Privacy = &p
	}

	res, err := h.svc.Update(c.Request.Context(), userID, c.Param("id"), in)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *ResourceHandler) Delete(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "resource deleted"})
}
