package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Security holds session signing, cookie and rate limit settings.
type Security struct {
	SecretKey         string        `validate:"required,min=32"`
	SessionCookieName string        `validate:"required,printascii,excludesall=;="`
	SessionMaxAge     time.Duration `validate:"gt=0"`
	RateLimit         Quota
	PostLoginRedirect string `validate:"required"`
}

func loadSecurity(errs *[]string) Security {
	s := Security{
		SecretKey:         GetEnv("SECRET_KEY", ""),
		SessionCookieName: GetEnv("SESSION_COOKIE_NAME", "session"),
		SessionMaxAge:     time.Duration(getEnvInt("SESSION_MAX_AGE", 1800, errs)) * time.Second,
		PostLoginRedirect: GetEnv("POST_LOGIN_REDIRECT", "/"),
	}
	quota, err := ParseQuota(GetEnv("RATE_LIMIT", "5/minute"))
	if err != nil {
		*errs = append(*errs, "RATE_LIMIT: "+err.Error())
	}
	s.RateLimit = quota
	return s
}

// Quota is a request allowance over a period, e.g. 5 per minute.
type Quota struct {
	Requests int
	Per      time.Duration
}

func (q Quota) String() string {
	return fmt.Sprintf("%d/%s", q.Requests, q.Per)
}

var quotaUnits = map[string]time.Duration{
	"s": time.Second, "sec": time.Second, "second": time.Second, "seconds": time.Second,
	"m": time.Minute, "min": time.Minute, "minute": time.Minute, "minutes": time.Minute,
	"h": time.Hour, "hr": time.Hour, "hour": time.Hour, "hours": time.Hour,
	"d": 24 * time.Hour, "day": 24 * time.Hour, "days": 24 * time.Hour,
}

// ParseQuota parses a quota string of the form "<n>/<unit>", e.g. "5/minute".
func ParseQuota(s string) (Quota, error) {
	count, unit, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return Quota{}, fmt.Errorf("quota %q must look like <n>/<unit>", s)
	}
	n, err := strconv.Atoi(strings.TrimSpace(count))
	if err != nil || n <= 0 {
		return Quota{}, fmt.Errorf("quota %q must start with a positive integer", s)
	}
	per, ok := quotaUnits[strings.ToLower(strings.TrimSpace(unit))]
	if !ok {
		return Quota{}, fmt.Errorf("quota %q has unknown unit %q", s, unit)
	}
	return Quota{Requests: n, Per: per}, nil
}
