package manager

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const maxTitleLength = 2048

// ErrValidation wraps every input validation failure.
var ErrValidation = errors.New("validation failed")

type bookmarkRequest struct {
	URL   string
	Title string
}

type folderRequest struct {
	Title string
}

func (r *bookmarkRequest) validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.URL, validation.Required, is.RequestURL),
		validation.Field(&r.Title, validation.Required, validation.Length(1, maxTitleLength)),
	)
	return wrapValidation(err)
}

func (r *folderRequest) validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, maxTitleLength)),
	)
	return wrapValidation(err)
}

func validateURL(rawURL string) error {
	return wrapValidation(validation.Validate(rawURL, validation.Required, is.RequestURL))
}

func wrapValidation(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrValidation, err)
}
