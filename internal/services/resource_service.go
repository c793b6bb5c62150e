package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/notehub/notehub/internal/cache"
	"github.com/notehub/notehub/internal/models"
	"github.com/notehub/notehub/internal/policy"
	pgrepo "github.com/notehub/notehub/internal/repositories/postgres"
	"github.com/notehub/notehub/internal/storage"
	"github.com/notehub/notehub/internal/utils"
)

const (
	maxFileSize    = 50 << 20 // 50MB
	maxTags        = 10
	maxTagLen      = 50
	resourceTTL    = time.Minute // detail cache TTL
	minUploadYear  = 2000
	maxDescription = 1000
)

var allowedMIMETypes = map[string]struct{}{
	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"application/vnd.ms-powerpoint":                                           {},
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": {},
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
	"text/plain": {},
}

var allowedExtensions = map[string]struct{}{
	".pdf": {}, ".doc": {}, ".docx": {}, ".ppt": {}, ".pptx": {},
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".webp": {}, ".txt": {},
}

// CreateResourceInput is the upload metadata; every field except Description,
// Tags and Privacy is required.
type CreateResourceInput struct {
	Title        string
	Subject      string
	Semester     int
	ResourceType models.ResourceType
	Year         int
	Description  string
	Tags         []string
	Privacy      models.Privacy // defaults to Private
}

// UpdateResourceInput patches mutable metadata; nil leaves a field unchanged.
// Owner, counters and the file handle are immutable through this path.
type UpdateResourceInput struct {
	Title        *string
	Subject      *string
	Semester     *int
	ResourceType *models.ResourceType
	Year         *int
	Description  *string
	Tags         *[]string
	Privacy      *models.Privacy
}

type FileInput struct {
	Name        string
	Size        int64
	ContentType string
}

// BrowseQuery mirrors the browse endpoint's filter set.
type BrowseQuery struct {
	Type     string
	Semester int
	Subject  string
	Branch   string
	Year     int
	Privacy  string
	Search   string
	Sort     string // latest (default) | popular | rated
}

// BrowseItem is a catalog row enriched with uploader info for listings.
type BrowseItem struct {
	models.Resource
	UploaderName    string `json:"uploader_name"`
	UploaderCollege string `json:"uploader_college"`
}

type ResourceService interface {
	Create(ctx context.Context, ownerID string, in CreateResourceInput, file FileInput, r io.Reader) (*models.Resource, error)
	Get(ctx context.Context, id string) (*models.Resource, error)
	Update(ctx context.Context, requesterID, id string, in UpdateResourceInput) (*models.Resource, error)
	Delete(ctx context.Context, requesterID, id string) error

	Browse(ctx context.Context, viewerID string, q BrowseQuery) ([]BrowseItem, error)
	MyResources(ctx context.Context, ownerID string, q BrowseQuery) ([]models.Resource, error)

	// OpenFile checks access, bumps the matching counter and streams the
	// blob. Action must be policy.ActionView or policy.ActionDownload.
	OpenFile(ctx context.Context, viewerID, id string, action policy.Action) (*models.Resource, io.ReadCloser, error)
}

type resourceService struct {
	resources pgrepo.ResourceRepository
	profiles  pgrepo.ProfileRepository
	prof      ProfileService
	blobs     storage.Storage
	cache     cache.Cache
}

func NewResourceService(
	resources pgrepo.ResourceRepository,
	profiles pgrepo.ProfileRepository,
	prof ProfileService,
	blobs storage.Storage,
	c cache.Cache,
) ResourceService {
	return &resourceService{
		resources: resources,
		profiles:  profiles,
		prof:      prof,
		blobs:     blobs,
		cache:     c,
	}
}

func resourceCacheKey(id string) string { return "resource:" + id }

func (s *resourceService) Create(ctx context.Context, ownerID string, in CreateResourceInput, file FileInput, r io.Reader) (*models.Resource, error) {
	const op = "ResourceService.Create"

	owner, err := s.prof.RequireComplete(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	tags, err := normalizeTags(op, in.Tags)
	if err != nil {
		return nil, err
	}
	if in.Privacy == "" {
		in.Privacy = models.PrivacyPrivate
	}
	if err := validateResourceMeta(op, in.Title, in.Subject, in.Semester, in.ResourceType, in.Year, in.Description, in.Privacy); err != nil {
		return nil, err
	}
	if err := validateFile(op, file); err != nil {
		return nil, err
	}

	objectName := fmt.Sprintf("resources/%s/%s%s",
		ownerID, uuid.NewString(), strings.ToLower(filepath.Ext(file.Name)))

	handle, err := s.blobs.Upload(ctx, objectName, file.ContentType, r)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to store file", err)
	}

	now := time.Now().UTC()
	res := &models.Resource{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		Title:        strings.TrimSpace(in.Title),
		Subject:      strings.TrimSpace(in.Subject),
		Branch:       owner.Branch,
		College:      owner.College,
		Semester:     in.Semester,
		ResourceType: in.ResourceType,
		Year:         in.Year,
		Description:  strings.TrimSpace(in.Description),
		Tags:         tags,
		Privacy:      in.Privacy,
		FileHandle:   handle,
		FileName:     file.Name,
		FileSize:     file.Size,
		FileType:     file.ContentType,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.resources.Insert(ctx, res); err != nil {
		// compensating delete so a failed insert never leaves an orphan blob
		_ = s.blobs.Delete(ctx, handle)
		return nil, utils.E(utils.CodeInternal, op, "failed to persist resource", err)
	}
	return res, nil
}

func (s *resourceService) Get(ctx context.Context, id string) (*models.Resource, error) {
	const op = "ResourceService.Get"

	if s.cache != nil {
		var cached models.Resource
		if hit, _ := s.cache.GetJSON(ctx, resourceCacheKey(id), &cached); hit {
			return &cached, nil
		}
	}

	res, err := s.resources.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "resource not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get resource", err)
	}

	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, resourceCacheKey(id), res, resourceTTL)
	}
	return res, nil
}

func (s *resourceService) Update(ctx context.Context, requesterID, id string, in UpdateResourceInput) (*models.Resource, error) {
	const op = "ResourceService.Update"

	res, err := s.resources.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "resource not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load resource", err)
	}

	requester := &models.Profile{UserID: requesterID}
	if d := policy.CanAccess(requester, res, policy.ActionEdit); !d.Allowed {
		return nil, utils.E(utils.CodeForbidden, op, d.Reason, nil)
	}

	if in.Title != nil {
		res.Title = strings.TrimSpace(*in.Title)
	}
	if in.Subject != nil {
		res.Subject = strings.TrimSpace(*in.Subject)
	}
	if in.Semester != nil {
		res.Semester = *in.Semester
	}
	if in.ResourceType != nil {
		res.ResourceType = *in.ResourceType
	}
	if in.Year != nil {
		res.Year = *in.Year
	}
	if in.Description != nil {
		res.Description = strings.TrimSpace(*in.Description)
	}
	if in.Tags != nil {
		tags, err := normalizeTags(op, *in.Tags)
		if err != nil {
			return nil, err
		}
		res.Tags = tags
	}
	if in.Privacy != nil {
		res.Privacy = *in.Privacy
	}

	if err := validateResourceMeta(op, res.Title, res.Subject, res.Semester, res.ResourceType, res.Year, res.Description, res.Privacy); err != nil {
		return nil, err
	}

	res.UpdatedAt = time.Now().UTC()
	if err := s.resources.Save(ctx, res); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update resource", err)
	}

	if s.cache != nil {
		_ = s.cache.Del(ctx, resourceCacheKey(id))
	}
	return res, nil
}

func (s *resourceService) Delete(ctx context.Context, requesterID, id string) error {
	const op = "ResourceService.Delete"

	res, err := s.resources.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "resource not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to load resource", err)
	}

	requester := &models.Profile{UserID: requesterID}
	if d := policy.CanAccess(requester, res, policy.ActionDelete); !d.Allowed {
		return utils.E(utils.CodeForbidden, op, d.Reason, nil)
	}

	// Blob first: if the row delete fails the handle is still recorded and a
	// retry stays possible, while the reverse order could leak the blob.
	if err := s.blobs.Delete(ctx, res.FileHandle); err != nil && !errors.Is(err, utils.ErrNotFound) {
		return utils.E(utils.CodeUnavailable, op, "failed to release file", err)
	}

	if err := s.resources.DeleteWithReviews(ctx, id); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "resource not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to delete resource", err)
	}

	if s.cache != nil {
		_ = s.cache.Del(ctx, resourceCacheKey(id))
	}
	return nil
}

func (s *resourceService) Browse(ctx context.Context, viewerID string, q BrowseQuery) ([]BrowseItem, error) {
	const op = "ResourceService.Browse"

	viewer, err := s.prof.RequireComplete(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if err := validateBrowseQuery(op, q); err != nil {
		return nil, err
	}

	rows, err := s.resources.List(ctx, pgrepo.ResourceFilter{
		ViewerCollege: viewer.College,
		Type:          models.ResourceType(q.Type),
		Semester:      q.Semester,
		Subject:       q.Subject,
		Branch:        q.Branch,
		Year:          q.Year,
		Privacy:       models.Privacy(q.Privacy),
		Search:        q.Search,
		Sort:          q.Sort,
	})
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list resources", err)
	}

	return s.enrichUploaders(ctx, op, rows)
}

func (s *resourceService) MyResources(ctx context.Context, ownerID string, q BrowseQuery) ([]models.Resource, error) {
	const op = "ResourceService.MyResources"

	if _, err := s.prof.RequireComplete(ctx, ownerID); err != nil {
		return nil, err
	}
	if err := validateBrowseQuery(op, q); err != nil {
		return nil, err
	}

	rows, err := s.resources.List(ctx, pgrepo.ResourceFilter{
		OwnerID:  ownerID,
		Type:     models.ResourceType(q.Type),
		Semester: q.Semester,
		Subject:  q.Subject,
		Branch:   q.Branch,
		Year:     q.Year,
		Privacy:  models.Privacy(q.Privacy),
		Search:   q.Search,
		Sort:     q.Sort,
	})
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list resources", err)
	}
	return rows, nil
}

func (s *resourceService) OpenFile(ctx context.Context, viewerID, id string, action policy.Action) (*models.Resource, io.ReadCloser, error) {
	const op = "ResourceService.OpenFile"

	viewer, err := s.prof.RequireComplete(ctx, viewerID)
	if err != nil {
		return nil, nil, err
	}

	res, err := s.resources.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, nil, utils.E(utils.CodeNotFound, op, "resource not found", err)
		}
		return nil, nil, utils.E(utils.CodeInternal, op, "failed to load resource", err)
	}

	if d := policy.CanAccess(viewer, res, action); !d.Allowed {
		return nil, nil, utils.E(utils.CodeForbidden, op, d.Reason, nil)
	}

	switch action {
	case policy.ActionDownload:
		err = s.resources.IncrementDownloads(ctx, id)
	default:
		err = s.resources.IncrementViews(ctx, id)
	}
	if err != nil && !errors.Is(err, utils.ErrNotFound) {
		return nil, nil, utils.E(utils.CodeInternal, op, "failed to record access", err)
	}
	if s.cache != nil {
		_ = s.cache.Del(ctx, resourceCacheKey(id))
	}

	rc, err := s.blobs.Open(ctx, res.FileHandle)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, nil, utils.E(utils.CodeNotFound, op, "file not found", err)
		}
		return nil, nil, utils.E(utils.CodeUnavailable, op, "failed to open file", err)
	}
	return res, rc, nil
}

func (s *resourceService) enrichUploaders(ctx context.Context, op string, rows []models.Resource) ([]BrowseItem, error) {
	ids := make([]string, 0, len(rows))
	seen := map[string]struct{}{}
	for _, r := range rows {
		if _, ok := seen[r.OwnerID]; !ok {
			seen[r.OwnerID] = struct{}{}
			ids = append(ids, r.OwnerID)
		}
	}
	sort.Strings(ids)

	profiles, err := s.profiles.GetByUserIDs(ctx, ids)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load uploader profiles", err)
	}
	byID := make(map[string]models.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.UserID] = p
	}

	out := make([]BrowseItem, 0, len(rows))
	for _, r := range rows {
		item := BrowseItem{Resource: r, UploaderName: "Anonymous", UploaderCollege: r.College}
		if p, ok := byID[r.OwnerID]; ok {
			if p.Name != "" {
				item.UploaderName = p.Name
			}
			item.UploaderCollege = p.College
		}
		out = append(out, item)
	}
	return out, nil
}
