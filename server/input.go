package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/moodtunes/mood-music-api/internal/errors"
)

// ValidateInput parses and validates the request input before anything else in
// the chain runs, so malformed requests never reach the session or upstream.
// The parsed value is available to the handler through inputFrom.
func ValidateInput[T any](v *validator.Validate, parse func(*http.Request) (T, error)) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			in, err := parse(r)
			if err == nil {
				err = describeValidation(v.Struct(in))
			}
			if err != nil {
				writeError(w, r, err)
				return
			}
			next(w, r.WithContext(context.WithValue(r.Context(), ContextKeyInput, in)))
		}
	}
}

func inputFrom[T any](r *http.Request) T {
	in, _ := r.Context().Value(ContextKeyInput).(T)
	return in
}

func describeValidation(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidRequest, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "gte", "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
		case "lte", "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return fmt.Errorf("%w: %s", apperrors.ErrInvalidRequest, strings.Join(msgs, "; "))
}
