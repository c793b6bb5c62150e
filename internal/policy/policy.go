// Package policy decides, for a (viewer, resource) pair, whether an action is
// permitted. It is pure: no storage access, no hidden state.
package policy

import (
	"fmt"
	"strings"

	"github.com/notehub/notehub/internal/models"
)

type Action string

const (
	ActionView     Action = "view"
	ActionDownload Action = "download"
	ActionRate     Action = "rate"
	ActionEdit     Action = "edit"
	ActionDelete   Action = "delete"
)

type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision             { return Decision{Allowed: true} }
func deny(reason string) Decision { return Decision{Allowed: false, Reason: reason} }

// CanAccess evaluates the access rules in order:
//  1. edit/delete are owner-only.
//  2. rate requires a complete viewer profile, then falls through to
//     visibility. Owners may rate their own upload.
//  3. view/download need the resource to be Public, or Private with the
//     viewer in the owner's college. Owners always see their own rows.
//
// The resource carries the owner's college (denormalized at upload), so no
// owner-profile lookup is needed here.
func CanAccess(viewer *models.Profile, r *models.Resource, action Action) Decision {
	switch action {
	case ActionEdit, ActionDelete:
		if viewer != nil && viewer.UserID == r.OwnerID {
			return allow()
		}
		return deny("only the uploader may modify this resource")
	case ActionRate:
		if !viewer.Complete() {
			return deny("complete your profile (college, branch, semester) to rate resources")
		}
		return visible(viewer, r)
	case ActionView, ActionDownload:
		return visible(viewer, r)
	default:
		return deny(fmt.Sprintf("unknown action %q", action))
	}
}

func visible(viewer *models.Profile, r *models.Resource) Decision {
	if viewer != nil && viewer.UserID == r.OwnerID {
		return allow()
	}
	if r.Privacy == models.PrivacyPublic {
		return allow()
	}
	if viewer != nil && sameCollege(viewer.College, r.College) {
		return allow()
	}
	return deny(fmt.Sprintf("this is a private resource available only to %s students", r.College))
}

func sameCollege(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
