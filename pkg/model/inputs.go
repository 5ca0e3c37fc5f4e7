package model

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// NewCreation is the validated input for publishing a post. ImagePath, when
// set, names a local file to upload before the document is written.
type NewCreation struct {
	Title     string `validate:"required"`
	Body      string
	Tags      []string
	ImagePath string
}

// Validate checks the input, returning a *ValidationError on the first
// offending field.
func (in NewCreation) Validate() error {
	return toValidationError(validate.Struct(in))
}

// CreationEdit is the validated input for editing an existing post.
// NewImagePath uploads a replacement image; ImageRemoved clears the existing
// one when no replacement is supplied.
type CreationEdit struct {
	Title        string `validate:"required"`
	Body         string
	Tags         []string
	NewImagePath string
	ImageRemoved bool
}

// Validate checks the input, returning a *ValidationError on the first
// offending field.
func (in CreationEdit) Validate() error {
	return toValidationError(validate.Struct(in))
}

// NewComment is the validated input for posting a comment. ParentID is empty
// for a top-level comment.
type NewComment struct {
	Text     string `validate:"required"`
	ParentID string
}

// Validate checks the input, returning a *ValidationError on the first
// offending field.
func (in NewComment) Validate() error {
	return toValidationError(validate.Struct(in))
}

// ProfileEdit is the validated input for updating a profile.
type ProfileEdit struct {
	DisplayName string `validate:"required"`
	Bio         string
}

// Validate checks the input, returning a *ValidationError on the first
// offending field.
func (in ProfileEdit) Validate() error {
	return toValidationError(validate.Struct(in))
}

func toValidationError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{
			Field:   strings.ToLower(fe.Field()[:1]) + fe.Field()[1:],
			Message: "failed " + fe.Tag() + " check",
		}
	}
	return err
}
