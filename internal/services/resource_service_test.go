package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/notehub/notehub/internal/models"
	"github.com/notehub/notehub/internal/policy"
	"github.com/notehub/notehub/internal/utils"
)

func validCreateInput() CreateResourceInput {
	return CreateResourceInput{
		Title:        "Operating Systems Notes",
		Subject:      "Operating Systems",
		Semester:     5,
		ResourceType: models.TypeNotes,
		Year:         2024,
		Tags:         []string{"os", "scheduling"},
	}
}

func validFile() FileInput {
	return FileInput{Name: "os-notes.pdf", Size: 1024, ContentType: "application/pdf"}
}

func newResourceFixture() (*fakeProfileRepo, *fakeResourceRepo, *fakeStorage, ResourceService) {
	profiles := &fakeProfileRepo{profiles: map[string]models.Profile{
		"owner":    completeProfile("owner", "Asha Rao", "NIT Trichy", "CSE"),
		"peer":     completeProfile("peer", "Ravi Kumar", "NIT Trichy", "ECE"),
		"outsider": completeProfile("outsider", "Meera Nair", "IIT Madras", "CSE"),
	}}
	resources := newFakeResourceRepo()
	blobs := &fakeStorage{}
	profSvc := NewProfileService(profiles)
	svc := NewResourceService(resources, profiles, profSvc, blobs, nil)
	return profiles, resources, blobs, svc
}

func TestResourceService_Create(t *testing.T) {
	ctx := context.Background()
	_, resources, blobs, svc := newResourceFixture()

	res, err := svc.Create(ctx, "owner", validCreateInput(), validFile(), strings.NewReader("bytes"))
	require.NoError(t, err)

	require.Equal(t, "owner", res.OwnerID)
	require.Equal(t, models.PrivacyPrivate, res.Privacy, "privacy defaults to Private")
	require.Equal(t, "NIT Trichy", res.College, "owner college denormalized onto the row")
	require.Equal(t, "CSE", res.Branch)
	require.Len(t, blobs.uploads, 1)
	require.Equal(t, blobs.uploads[0], res.FileHandle)
	require.Len(t, resources.inserted, 1)
}

func TestResourceService_Create_TagLimit(t *testing.T) {
	ctx := context.Background()
	_, _, _, svc := newResourceFixture()

	in := validCreateInput()
	in.Tags = nil
	for i := 0; i < 11; i++ {
		in.Tags = append(in.Tags, fmt.Sprintf("tag%d", i))
	}
	_, err := svc.Create(ctx, "owner", in, validFile(), strings.NewReader("x"))
	require.True(t, utils.IsCode(err, utils.CodeInvalidArgument), "11 tags must fail")

	in.Tags = in.Tags[:10]
	_, err = svc.Create(ctx, "owner", in, validFile(), strings.NewReader("x"))
	require.NoError(t, err, "10 tags must pass")
}

func TestResourceService_Create_NormalizesTags(t *testing.T) {
	ctx := context.Background()
	_, _, _, svc := newResourceFixture()

	in := validCreateInput()
	in.Tags = []string{"  Recursion ", "recursion", "TREES", "", "linked lists"}

	res, err := svc.Create(ctx, "owner", in, validFile(), strings.NewReader("x"))
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"recursion", "trees", "linked lists"}, []string(res.Tags))
}

func TestResourceService_Create_CompensatesBlobOnInsertFailure(t *testing.T) {
	ctx := context.Background()
	_, resources, blobs, svc := newResourceFixture()
	resources.insertErr = errors.New("db down")

	_, err := svc.Create(ctx, "owner", validCreateInput(), validFile(), strings.NewReader("x"))
	require.Error(t, err)
	require.Len(t, blobs.uploads, 1)
	require.Equal(t, blobs.uploads, blobs.deletes, "orphan blob must be released")
}

func TestResourceService_Create_RequiresCompleteProfile(t *testing.T) {
	ctx := context.Background()
	_, _, blobs, svc := newResourceFixture()

	_, err := svc.Create(ctx, "ghost", validCreateInput(), validFile(), strings.NewReader("x"))
	require.True(t, utils.IsCode(err, utils.CodeForbidden))
	require.Empty(t, blobs.uploads, "nothing stored before the profile gate")
}

func TestResourceService_Update_OwnerOnly(t *testing.T) {
	ctx := context.Background()
	_, resources, _, svc := newResourceFixture()

	res, err := svc.Create(ctx, "owner", validCreateInput(), validFile(), strings.NewReader("x"))
	require.NoError(t, err)

	_, err = svc.Update(ctx, "peer", res.ID, UpdateResourceInput{Title: strPtr("Hijacked")})
	require.True(t, utils.IsCode(err, utils.CodeForbidden))
	require.Empty(t, resources.saved)

	updated, err := svc.Update(ctx, "owner", res.ID, UpdateResourceInput{Title: strPtr("Updated OS Notes")})
	require.NoError(t, err)
	require.Equal(t, "Updated OS Notes", updated.Title)
	require.Equal(t, res.FileHandle, updated.FileHandle, "file handle immutable on update")
	require.Equal(t, res.OwnerID, updated.OwnerID)
}

func TestResourceService_Delete(t *testing.T) {
	ctx := context.Background()
	_, resources, blobs, svc := newResourceFixture()

	res, err := svc.Create(ctx, "owner", validCreateInput(), validFile(), strings.NewReader("x"))
	require.NoError(t, err)

	err = svc.Delete(ctx, "peer", res.ID)
	require.True(t, utils.IsCode(err, utils.CodeForbidden))

	require.NoError(t, svc.Delete(ctx, "owner", res.ID))
	require.Contains(t, blobs.deletes, res.FileHandle, "blob released")
	require.Contains(t, resources.deleted, res.ID, "row and reviews removed")

	err = svc.Delete(ctx, "owner", res.ID)
	require.True(t, utils.IsCode(err, utils.CodeNotFound))
}

func TestResourceService_Browse(t *testing.T) {
	ctx := context.Background()
	profiles, resources, _, svc := newResourceFixture()

	resources.listOut = []models.Resource{
		{ID: "r1", OwnerID: "owner", College: "NIT Trichy"},
		{ID: "r2", OwnerID: "stranger", College: "Unknown U"},
	}

	items, err := svc.Browse(ctx, "peer", BrowseQuery{Sort: "popular"})
	require.NoError(t, err)

	require.Equal(t, "NIT Trichy", resources.listIn.ViewerCollege, "viewer college drives the visibility predicate")
	require.Equal(t, "popular", resources.listIn.Sort)
	require.Empty(t, resources.listIn.OwnerID)

	require.Len(t, items, 2)
	require.Equal(t, profiles.profiles["owner"].Name, items[0].UploaderName)
	require.Equal(t, "Anonymous", items[1].UploaderName, "missing uploader profile falls back")
}

func TestResourceService_Browse_GatedOnProfile(t *testing.T) {
	ctx := context.Background()
	_, _, _, svc := newResourceFixture()

	_, err := svc.Browse(ctx, "ghost", BrowseQuery{})
	require.True(t, utils.IsCode(err, utils.CodeForbidden))
}

func TestResourceService_Browse_RejectsBadSort(t *testing.T) {
	ctx := context.Background()
	_, _, _, svc := newResourceFixture()

	_, err := svc.Browse(ctx, "peer", BrowseQuery{Sort: "newest"})
	require.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}

func TestResourceService_MyResources(t *testing.T) {
	ctx := context.Background()
	_, resources, _, svc := newResourceFixture()

	_, err := svc.MyResources(ctx, "owner", BrowseQuery{Type: string(models.TypeNotes)})
	require.NoError(t, err)
	require.Equal(t, "owner", resources.listIn.OwnerID, "restricted to the owner, privacy predicate skipped")
	require.Empty(t, resources.listIn.ViewerCollege)
}

func TestResourceService_OpenFile(t *testing.T) {
	ctx := context.Background()
	_, resources, _, svc := newResourceFixture()

	res, err := svc.Create(ctx, "owner", validCreateInput(), validFile(), strings.NewReader("x"))
	require.NoError(t, err)

	// private + other college: denied, counter untouched
	_, _, err = svc.OpenFile(ctx, "outsider", res.ID, policy.ActionView)
	require.True(t, utils.IsCode(err, utils.CodeForbidden))
	require.Zero(t, resources.views[res.ID])

	// private + same college: allowed, view counted
	got, rc, err := svc.OpenFile(ctx, "peer", res.ID, policy.ActionView)
	require.NoError(t, err)
	rc.Close()
	require.Equal(t, res.ID, got.ID)
	require.Equal(t, 1, resources.views[res.ID])
	require.Zero(t, resources.downloads[res.ID])

	// download counts separately
	_, rc, err = svc.OpenFile(ctx, "owner", res.ID, policy.ActionDownload)
	require.NoError(t, err)
	rc.Close()
	require.Equal(t, 1, resources.downloads[res.ID])
}

func TestResourceService_Get_Caches(t *testing.T) {
	ctx := context.Background()
	profiles := &fakeProfileRepo{profiles: map[string]models.Profile{}}
	resources := newFakeResourceRepo()
	resources.byID["r1"] = models.Resource{ID: "r1", Title: "Cached"}
	c := newFakeCache()
	svc := NewResourceService(resources, profiles, NewProfileService(profiles), &fakeStorage{}, c)

	res, err := svc.Get(ctx, "r1")
	require.NoError(t, err)
	require.Equal(t, "Cached", res.Title)
	require.Contains(t, c.store, "resource:r1")

	// served from cache even after the row changes underneath
	resources.byID["r1"] = models.Resource{ID: "r1", Title: "Changed"}
	res, err = svc.Get(ctx, "r1")
	require.NoError(t, err)
	require.Equal(t, "Cached", res.Title)
}
