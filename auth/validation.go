package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	apperrors "github.com/moodtunes/mood-music-api/internal/errors"
)

// stateBytes is the entropy of a generated state value.
const stateBytes = 32

// NewState generates an unguessable anti-forgery state value.
func NewState() (string, error) {
	b := make([]byte, stateBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("[NewState] %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// ValidateState validates the shape of an OAuth state parameter.
func ValidateState(state string) error {
	if state == "" {
		return fmt.Errorf("%w: state parameter is required", apperrors.ErrStateMismatch)
	}

	// Should be reasonably long for CSRF protection
	if len(state) < 8 {
		return fmt.Errorf("%w: state parameter should be at least 8 characters", apperrors.ErrStateMismatch)
	}

	if strings.TrimSpace(state) != state {
		return fmt.Errorf("%w: state parameter must not contain leading/trailing whitespace", apperrors.ErrStateMismatch)
	}

	return nil
}

// VerifyState checks the state returned by the provider against the one
// stored at login. Both must be present and equal.
func VerifyState(stored, returned string) error {
	if err := ValidateState(stored); err != nil {
		return err
	}
	if err := ValidateState(returned); err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(returned)) != 1 {
		return fmt.Errorf("%w: state does not match", apperrors.ErrStateMismatch)
	}
	return nil
}
