package types

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Project is a bookmarked development project.
type Project struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Path        string    `json:"path"`
	Image       string    `json:"image"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProjectInput carries the fields accepted when creating a project.
// Name and URL are required; the rest default to empty.
type ProjectInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	URL         string `json:"url" validate:"required"`
	Path        string `json:"path"`
}

// ProjectPatch carries a partial update. Nil fields keep their prior value.
type ProjectPatch struct {
	Name        *string `json:"name,omitempty" validate:"omitnil,min=1"`
	Description *string `json:"description,omitempty"`
	URL         *string `json:"url,omitempty" validate:"omitnil,min=1"`
	Path        *string `json:"path,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names so errors match what clients sent.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks that name and url are present.
// Returns an error wrapping ErrValidation on failure.
func (in ProjectInput) Validate() error {
	return validationError(validate.Struct(in))
}

// Validate checks that a supplied name or url is non-empty.
// Returns an error wrapping ErrValidation on failure.
func (p ProjectPatch) Validate() error {
	return validationError(validate.Struct(p))
}

// IsEmpty reports whether the patch changes nothing.
func (p ProjectPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.URL == nil && p.Path == nil
}

// Apply copies the supplied fields onto project. It does not touch
// timestamps; stores stamp UpdatedAt themselves.
func (p ProjectPatch) Apply(project *Project) {
	if p.Name != nil {
		project.Name = *p.Name
	}
	if p.Description != nil {
		project.Description = *p.Description
	}
	if p.URL != nil {
		project.URL = *p.URL
	}
	if p.Path != nil {
		project.Path = *p.Path
	}
}

// Project builds an unsaved Project from the input.
func (in ProjectInput) Project() Project {
	return Project{
		Name:        in.Name,
		Description: in.Description,
		URL:         in.URL,
		Path:        in.Path,
	}
}

func validationError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "min":
			msgs = append(msgs, fe.Field()+" must not be empty")
		default:
			msgs = append(msgs, fe.Field()+" is invalid")
		}
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
}
