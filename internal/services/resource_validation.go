package services

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/notehub/notehub/internal/models"
	"github.com/notehub/notehub/internal/utils"
)

func validateResourceMeta(op, title, subject string, semester int, rt models.ResourceType, year int, description string, privacy models.Privacy) error {
	switch {
	case len(strings.TrimSpace(title)) < 3 || len(title) > 200:
		return utils.E(utils.CodeInvalidArgument, op, "title must be between 3 and 200 characters", nil)
	case len(strings.TrimSpace(subject)) < 2 || len(subject) > 100:
		return utils.E(utils.CodeInvalidArgument, op, "subject must be between 2 and 100 characters", nil)
	case semester < 1 || semester > 12:
		return utils.E(utils.CodeInvalidArgument, op, "semester must be between 1 and 12", nil)
	case !models.ValidResourceType(rt):
		return utils.E(utils.CodeInvalidArgument, op,
			"resource_type must be one of: Notes, Question Papers, Solutions, Project Reports, Study Material", nil)
	case len(description) > maxDescription:
		return utils.E(utils.CodeInvalidArgument, op, "description must not exceed 1000 characters", nil)
	case privacy != models.PrivacyPublic && privacy != models.PrivacyPrivate:
		return utils.E(utils.CodeInvalidArgument, op, "privacy must be Public or Private", nil)
	}

	maxYear := time.Now().Year() + 5
	if year < minUploadYear || year > maxYear {
		return utils.E(utils.CodeInvalidArgument, op,
			fmt.Sprintf("year must be between %d and %d", minUploadYear, maxYear), nil)
	}
	return nil
}

// normalizeTags lowercases, trims and deduplicates; empties are dropped. Tags
// differing only by surrounding whitespace or case collapse to one. The ≤10
// check runs after normalization.
func normalizeTags(op string, tags []string) ([]string, error) {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if len(t) > maxTagLen {
			return nil, utils.E(utils.CodeInvalidArgument, op, "each tag must be at most 50 characters", nil)
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	if len(out) > maxTags {
		return nil, utils.E(utils.CodeInvalidArgument, op, "maximum 10 tags allowed", nil)
	}
	sort.Strings(out)
	return out, nil
}

func validateFile(op string, f FileInput) error {
	if f.Name == "" {
		return utils.E(utils.CodeInvalidArgument, op, "file name is required", nil)
	}
	if f.Size <= 0 || f.Size > maxFileSize {
		return utils.E(utils.CodeInvalidArgument, op, "file size must be between 1 byte and 50MB", nil)
	}

	if _, ok := allowedMIMETypes[f.ContentType]; ok {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(f.Name))
	if _, ok := allowedExtensions[ext]; ok {
		return nil
	}
	return utils.E(utils.CodeInvalidArgument, op,
		"file type not allowed (pdf, doc, docx, ppt, pptx, jpg, jpeg, png, gif, webp, txt)", nil)
}

func validateBrowseQuery(op string, q BrowseQuery) error {
	switch q.Sort {
	case "", "latest", "popular", "rated":
	default:
		return utils.E(utils.CodeInvalidArgument, op, "sort must be latest, popular or rated", nil)
	}
	if q.Privacy != "" {
		if p := models.Privacy(q.Privacy); p != models.PrivacyPublic && p != models.PrivacyPrivate {
			return utils.E(utils.CodeInvalidArgument, op, "privacy must be Public or Private", nil)
		}
	}
	if q.Type != "" && !models.ValidResourceType(models.ResourceType(q.Type)) {
		return utils.E(utils.CodeInvalidArgument, op, "unknown resource type", nil)
	}
	if q.Semester != 0 && (q.Semester < 1 || q.Semester > 12) {
		return utils.E(utils.CodeInvalidArgument, op, "semester must be between 1 and 12", nil)
	}
	return nil
}
