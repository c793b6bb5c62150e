package policy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/notehub/notehub/internal/models"
)

func profile(userID, college string) *models.Profile {
	return &models.Profile{
		UserID:   userID,
		College:  college,
		Branch:   "CSE",
		Semester: 4,
	}
}

func resource(ownerID, college string, privacy models.Privacy) *models.Resource {
	return &models.Resource{ID: "res-1", OwnerID: ownerID, College: college, Privacy: privacy}
}

func TestCanAccess_Visibility(t *testing.T) {
	cases := []struct {
		name    string
		viewer  *models.Profile
		res     *models.Resource
		action  Action
		allowed bool
	}{
		{"public readable by anyone", profile("u2", "IIT Madras"), resource("u1", "NIT Trichy", models.PrivacyPublic), ActionView, true},
		{"private same college", profile("u2", "NIT Trichy"), resource("u1", "NIT Trichy", models.PrivacyPrivate), ActionView, true},
		{"private cross college", profile("u2", "IIT Madras"), resource("u1", "NIT Trichy", models.PrivacyPrivate), ActionView, false},
		{"private owner always sees", profile("u1", "IIT Madras"), resource("u1", "NIT Trichy", models.PrivacyPrivate), ActionDownload, true},
		{"college match ignores case and padding", profile("u2", "  nit trichy "), resource("u1", "NIT Trichy", models.PrivacyPrivate), ActionDownload, true},
		{"nil viewer sees public", nil, resource("u1", "NIT Trichy", models.PrivacyPublic), ActionView, true},
		{"nil viewer blocked from private", nil, resource("u1", "NIT Trichy", models.PrivacyPrivate), ActionView, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := CanAccess(tc.viewer, tc.res, tc.action)
			require.Equal(t, tc.allowed, d.Allowed)
			if !tc.allowed {
				require.NotEmpty(t, d.Reason)
			}
		})
	}
}

func TestCanAccess_OwnerOnlyMutation(t *testing.T) {
	res := resource("u1", "NIT Trichy", models.PrivacyPublic)

	require.True(t, CanAccess(profile("u1", "NIT Trichy"), res, ActionEdit).Allowed)
	require.True(t, CanAccess(profile("u1", "NIT Trichy"), res, ActionDelete).Allowed)

	// public visibility does not grant mutation
	require.False(t, CanAccess(profile("u2", "NIT Trichy"), res, ActionEdit).Allowed)
	require.False(t, CanAccess(profile("u2", "NIT Trichy"), res, ActionDelete).Allowed)
	require.False(t, CanAccess(nil, res, ActionDelete).Allowed)
}

func TestCanAccess_Rate(t *testing.T) {
	res := resource("u1", "NIT Trichy", models.PrivacyPrivate)

	require.True(t, CanAccess(profile("u2", "NIT Trichy"), res, ActionRate).Allowed)
	require.True(t, CanAccess(profile("u1", "NIT Trichy"), res, ActionRate).Allowed, "owner may rate own upload")
	require.False(t, CanAccess(profile("u2", "IIT Madras"), res, ActionRate).Allowed)

	incomplete := &models.Profile{UserID: "u2", College: "NIT Trichy"}
	d := CanAccess(incomplete, res, ActionRate)
	require.False(t, d.Allowed)
	require.Contains(t, d.Reason, "complete your profile")

	require.False(t, CanAccess(nil, res, ActionRate).Allowed)
}

func TestCanAccess_UnknownAction(t *testing.T) {
	d := CanAccess(profile("u1", "NIT Trichy"), resource("u1", "NIT Trichy", models.PrivacyPublic), Action("share"))
	require.False(t, d.Allowed)
}
