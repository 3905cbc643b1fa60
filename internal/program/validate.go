package program

import (
	"strings"

	"github.com/logo-playground/api/internal/validation"
)

const (
	maxTitleLength       = 255
	maxDescriptionLength = 1000
)

const visibilityMessage = "visibility must be one of private, unlisted, public"

// CreateRequest is the payload for creating a program. Pointer fields
// distinguish "absent" from "empty" so required-field checks are honest.
type CreateRequest struct {
	Title       *string `json:"title"`
	Code        *string `json:"code"`
	Description *string `json:"description"`
	Visibility  *string `json:"visibility"`
}

// validateCreate checks every rule and normalizes the request in place
// (title and description are trimmed, matching the original API's behavior).
func validateCreate(req *CreateRequest) error {
	verr := validation.NewErrors()

	if req.Title == nil {
		verr.Add("title", "title is required")
	} else {
		trimmed := strings.TrimSpace(*req.Title)
		*req.Title = trimmed
		if trimmed == "" {
			verr.Add("title", "title must not be empty")
		} else if len(trimmed) > maxTitleLength {
			verr.Add("title", "title must be at most 255 characters")
		}
	}

	if req.Code == nil {
		verr.Add("code", "code is required")
	}

	if req.Description != nil {
		trimmed := strings.TrimSpace(*req.Description)
		*req.Description = trimmed
		if len(trimmed) > maxDescriptionLength {
			verr.Add("description", "description must be at most 1000 characters")
		}
	}

	if req.Visibility != nil && !Visibility(*req.Visibility).Valid() {
		verr.Add("visibility", visibilityMessage)
	}

	return verr.ErrOrNil()
}

// validatePatch checks every supplied field of a partial update. Fields absent
// from the patch are not validated; an explicit null is rejected for title and
// code but clears description.
func validatePatch(patch *Patch) error {
	verr := validation.NewErrors()

	if patch.Title.Set {
		if patch.Title.Value == nil {
			verr.Add("title", "title must not be null")
		} else {
			trimmed := strings.TrimSpace(*patch.Title.Value)
			*patch.Title.Value = trimmed
			if trimmed == "" {
				verr.Add("title", "title must not be empty")
			} else if len(trimmed) > maxTitleLength {
				verr.Add("title", "title must be at most 255 characters")
			}
		}
	}

	if patch.Code.Set && patch.Code.Value == nil {
		verr.Add("code", "code must not be null")
	}

	if patch.Description.Set && patch.Description.Value != nil {
		trimmed := strings.TrimSpace(*patch.Description.Value)
		*patch.Description.Value = trimmed
		if len(trimmed) > maxDescriptionLength {
			verr.Add("description", "description must be at most 1000 characters")
		}
	}

	if patch.Visibility.Set && !patch.Visibility.Value.Valid() {
		verr.Add("visibility", visibilityMessage)
	}

	return verr.ErrOrNil()
}
