package services

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/notehub/notehub/internal/models"
	pgrepo "github.com/notehub/notehub/internal/repositories/postgres"
	"github.com/notehub/notehub/internal/utils"
)

type fakeProfileRepo struct {
	profiles map[string]models.Profile
	err      error
}

var _ pgrepo.ProfileRepository = (*fakeProfileRepo)(nil)

func (f *fakeProfileRepo) GetByUserID(_ context.Context, userID string) (*models.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.profiles[userID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := p
	return &cp, nil
}

func (f *fakeProfileRepo) GetByUserIDs(_ context.Context, userIDs []string) ([]models.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Profile
	for _, id := range userIDs {
		if p, ok := f.profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProfileRepo) Insert(_ context.Context, p *models.Profile) error {
	if f.err != nil {
		return f.err
	}
	f.profiles[p.UserID] = *p
	return nil
}

func (f *fakeProfileRepo) Save(_ context.Context, p *models.Profile) error {
	if f.err != nil {
		return f.err
	}
	f.profiles[p.UserID] = *p
	return nil
}

func (f *fakeProfileRepo) Delete(_ context.Context, userID string) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.profiles[userID]; !ok {
		return utils.ErrNotFound
	}
	delete(f.profiles, userID)
	return nil
}

type fakeResourceRepo struct {
	byID      map[string]models.Resource
	insertErr error
	inserted  []models.Resource
	saved     []models.Resource
	listIn    pgrepo.ResourceFilter
	listOut   []models.Resource
	views     map[string]int
	downloads map[string]int
	deleted   []string
}

var _ pgrepo.ResourceRepository = (*fakeResourceRepo)(nil)

func newFakeResourceRepo() *fakeResourceRepo {
	return &fakeResourceRepo{
		byID:      map[string]models.Resource{},
		views:     map[string]int{},
		downloads: map[string]int{},
	}
}

func (f *fakeResourceRepo) Insert(_ context.Context, res *models.Resource) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, *res)
	f.byID[res.ID] = *res
	return nil
}

func (f *fakeResourceRepo) GetByID(_ context.Context, id string) (*models.Resource, error) {
	res, ok := f.byID[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := res
	return &cp, nil
}

func (f *fakeResourceRepo) Save(_ context.Context, res *models.Resource) error {
	f.saved = append(f.saved, *res)
	f.byID[res.ID] = *res
	return nil
}

func (f *fakeResourceRepo) List(_ context.Context, filter pgrepo.ResourceFilter) ([]models.Resource, error) {
	f.listIn = filter
	return append([]models.Resource(nil), f.listOut...), nil
}

func (f *fakeResourceRepo) IncrementViews(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return utils.ErrNotFound
	}
	f.views[id]++
	return nil
}

func (f *fakeResourceRepo) IncrementDownloads(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return utils.ErrNotFound
	}
	f.downloads[id]++
	return nil
}

func (f *fakeResourceRepo) DeleteWithReviews(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return utils.ErrNotFound
	}
	delete(f.byID, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeReviewRepo struct {
	listOut   []models.Review
	submitted []models.Review
	avg       float64
	count     int64
	submitErr error
}

var _ pgrepo.ReviewRepository = (*fakeReviewRepo)(nil)

func (f *fakeReviewRepo) ListByResource(_ context.Context, resourceID string) ([]models.Review, error) {
	return append([]models.Review(nil), f.listOut...), nil
}

func (f *fakeReviewRepo) SubmitAndRecount(_ context.Context, rev *models.Review) (float64, int64, error) {
	if f.submitErr != nil {
		return 0, 0, f.submitErr
	}
	f.submitted = append(f.submitted, *rev)
	return f.avg, f.count, nil
}

type fakeStorage struct {
	uploads   []string
	deletes   []string
	uploadErr error
	openErr   error
	content   string
}

func (f *fakeStorage) Upload(_ context.Context, objectName, _ string, r io.Reader) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	_, _ = io.Copy(io.Discard, r)
	f.uploads = append(f.uploads, objectName)
	return objectName, nil
}

func (f *fakeStorage) Open(_ context.Context, _ string) (io.ReadCloser, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	return io.NopCloser(strings.NewReader(f.content)), nil
}

func (f *fakeStorage) Delete(_ context.Context, handle string) error {
	f.deletes = append(f.deletes, handle)
	return nil
}

type fakeCache struct {
	store   map[string][]byte
	deleted []string
}

func newFakeCache() *fakeCache { return &fakeCache{store: map[string][]byte{}} }

func (f *fakeCache) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	b, ok := f.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (f *fakeCache) SetJSON(_ context.Context, key string, val any, _ time.Duration) error {
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}
	f.store[key] = b
	return nil
}

func (f *fakeCache) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.store, k)
		f.deleted = append(f.deleted, k)
	}
	return nil
}

func completeProfile(userID, name, college, branch string) models.Profile {
	return models.Profile{
		UserID:   userID,
		Name:     name,
		College:  college,
		Branch:   branch,
		Semester: 4,
	}
}
