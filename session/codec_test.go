package session_test

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/moodtunes/mood-music-api/session"
	"github.com/stretchr/testify/require"
)

const (
	testSecret      = "0123456789abcdef0123456789abcdef"
	otherSecret     = "fedcba9876543210fedcba9876543210"
	testUserID      = "spotify-user-1"
	testAccessToken = "BQBP-access"
	testRefresh     = "AQB-refresh"
	testMaxAge      = 30 * time.Minute
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func newCodec(t *testing.T, secret string, c *clock) *session.Codec {
	t.Helper()
	codec, err := session.NewCodec(secret, testMaxAge, session.WithClock(c.Now))
	require.NoError(t, err)
	return codec
}

func TestCodec_RoundTrip(t *testing.T) {
	c := &clock{t: time.Unix(1_700_000_000, 0)}
	codec := newCodec(t, testSecret, c)

	blob, err := codec.Create(testUserID, testAccessToken, testRefresh)
	require.NoError(t, err)

	s, ok := codec.Get(blob)
	require.True(t, ok)
	require.Equal(t, testUserID, s.UserID)
	require.Equal(t, testAccessToken, s.AccessToken)
	require.Equal(t, testRefresh, s.RefreshToken)
	require.Equal(t, c.t.Add(testMaxAge).Unix(), s.ExpiresAt.Unix())
}

func TestCodec_EncodeKeepsExpiry(t *testing.T) {
	c := &clock{t: time.Unix(1_700_000_000, 0)}
	codec := newCodec(t, testSecret, c)
	expiry := c.t.Add(time.Hour)

	blob, err := codec.Encode(session.Session{UserID: testUserID, AccessToken: testAccessToken, RefreshToken: testRefresh, ExpiresAt: expiry})
	require.NoError(t, err)

	s, ok := codec.Get(blob)
	require.True(t, ok)
	require.Equal(t, expiry.Unix(), s.ExpiresAt.Unix())
}

func TestCodec_Rejects(t *testing.T) {
	c := &clock{t: time.Unix(1_700_000_000, 0)}
	codec := newCodec(t, testSecret, c)
	blob, err := codec.Create(testUserID, testAccessToken, testRefresh)
	require.NoError(t, err)

	t.Run("different secret", func(t *testing.T) {
		other := newCodec(t, otherSecret, c)
		_, ok := other.Get(blob)
		require.False(t, ok)
	})

	t.Run("older than max age", func(t *testing.T) {
		later := &clock{t: c.t.Add(testMaxAge + time.Second)}
		_, ok := newCodec(t, testSecret, later).Get(blob)
		require.False(t, ok)
	})

	t.Run("just inside max age", func(t *testing.T) {
		later := &clock{t: c.t.Add(testMaxAge - time.Second)}
		_, ok := newCodec(t, testSecret, later).Get(blob)
		require.True(t, ok)
	})

	t.Run("arbitrary string", func(t *testing.T) {
		for _, s := range []string{"", "not-a-session", "a.b.c", strings.Repeat("x", 512)} {
			_, ok := codec.Get(s)
			require.False(t, ok, s)
		}
	})

	t.Run("tampered payload", func(t *testing.T) {
		parts := strings.Split(blob, ".")
		require.Len(t, parts, 3)
		payload, err := base64.RawURLEncoding.DecodeString(parts[1])
		require.NoError(t, err)
		forged := strings.Replace(string(payload), testUserID, "someone-else", 1)
		parts[1] = base64.RawURLEncoding.EncodeToString([]byte(forged))

		_, ok := codec.Get(strings.Join(parts, "."))
		require.False(t, ok)
	})

	t.Run("issued in the future", func(t *testing.T) {
		earlier := &clock{t: c.t.Add(-time.Hour)}
		_, ok := newCodec(t, testSecret, earlier).Get(blob)
		require.False(t, ok)
	})
}

func TestNewCodec_Validation(t *testing.T) {
	_, err := session.NewCodec("", testMaxAge)
	require.Error(t, err)

	_, err = session.NewCodec(testSecret, 0)
	require.Error(t, err)
}

func TestSession_Expired(t *testing.T) {
	now := time.Now()
	require.True(t, session.Session{ExpiresAt: now.Add(-time.Second)}.Expired(now))
	require.False(t, session.Session{ExpiresAt: now.Add(time.Second)}.Expired(now))
}
