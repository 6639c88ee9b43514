package evaluation

import (
	"errors"

	"github.com/krishimitra/krishi_mitra/internal/httpjson"
)

var (
	ErrInvalidEmail   = errors.New("evaluation: not a gmail address")
	ErrSpeechDisabled = errors.New("evaluation: speech is disabled")
)

const (
	SavedMessage        = "Report will be sent to your email. Thank you!"
	FailedMessage       = "Failed to save evaluation. Please try again."
	InvalidEmailMessage = "Please enter a valid Gmail address"
)

// Result is the outcome of a single Save. Exactly one of ID and Err is set.
type Result struct {
	ID  string
	Err error
}

func Ok(id string) Result     { return Result{ID: id} }
func Failed(err error) Result { return Result{Err: err} }
func (r Result) IsOk() bool   { return r.Err == nil }

// Toast is the notification the farmer sees for r.
func (r Result) Toast() httpjson.Toast {
	switch {
	case r.Err == nil:
		return httpjson.Toast{Title: "Success!", Description: SavedMessage}
	case errors.Is(r.Err, ErrInvalidEmail):
		return httpjson.Toast{Title: "Invalid Email", Description: InvalidEmailMessage}
	}
	return httpjson.Toast{Title: "Error", Description: FailedMessage}
}
