package session

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/hkdf"
)

const (
	issuer  = "mood-music-api"
	keyInfo = "mood-music-api session signing v1"
)

var (
	ErrSessionExpired   = errors.New("session expired")
	ErrSessionMalformed = errors.New("session malformed")
)

// claims is the signed payload. It is readable by anyone holding the cookie:
// the signature gives integrity, not confidentiality.
type claims struct {
	UserID       string `json:"uid"`
	AccessToken  string `json:"at"`
	RefreshToken string `json:"rt"`
	TokenExpiry  int64  `json:"tex"`
	jwt.RegisteredClaims
}

// Codec turns sessions into signed, time-limited strings suitable for a
// cookie and back.
type Codec struct {
	key    []byte
	maxAge time.Duration
	now    func() time.Time
}

type Option func(*Codec)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

// NewCodec derives an HS256 signing key from secret. Blobs older than maxAge
// are rejected regardless of the access token expiry they carry.
func NewCodec(secret string, maxAge time.Duration, opts ...Option) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("[session NewCodec] secret is required")
	}
	if maxAge <= 0 {
		return nil, errors.New("[session NewCodec] max age must be positive")
	}
	key, err := deriveKey(secret)
	if err != nil {
		return nil, fmt.Errorf("[session NewCodec] %w", err)
	}

	c := &Codec{key: key, maxAge: maxAge, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func deriveKey(secret string) ([]byte, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("deriving signing key: %w", err)
	}
	return key, nil
}

// Create issues a blob for a freshly authenticated user. The access token is
// considered valid for the session max age.
func (c *Codec) Create(userID, accessToken, refreshToken string) (string, error) {
	return c.Encode(Session{
		UserID:       userID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    c.now().Add(c.maxAge),
	})
}

// Encode signs s as-is, keeping its access token expiry.
func (c *Codec) Encode(s Session) (string, error) {
	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID:       s.UserID,
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenExpiry:  s.ExpiresAt.Unix(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   s.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.maxAge)),
			ID:        uuid.NewString(),
		},
	})
	signed, err := token.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("[session Encode] failed to sign session: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature and age of a blob.
func (c *Codec) Decode(blob string) (Session, error) {
	var cl claims
	_, err := jwt.ParseWithClaims(blob, &cl,
		func(*jwt.Token) (any, error) { return c.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return Session{}, fmt.Errorf("[session Decode] %w", err)
	}
	if cl.IssuedAt == nil || c.now().Sub(cl.IssuedAt.Time) > c.maxAge {
		return Session{}, ErrSessionExpired
	}
	if cl.UserID == "" || cl.AccessToken == "" {
		return Session{}, ErrSessionMalformed
	}

	return Session{
		UserID:       cl.UserID,
		AccessToken:  cl.AccessToken,
		RefreshToken: cl.RefreshToken,
		ExpiresAt:    time.Unix(cl.TokenExpiry, 0),
	}, nil
}

// Get is Decode for callers that only care whether a session exists. Any
// verification failure means "no session".
func (c *Codec) Get(blob string) (Session, bool) {
	s, err := c.Decode(blob)
	if err != nil {
		log.Debug().Err(err).Msg("session rejected")
		return Session{}, false
	}
	return s, true
}
