package config

import "strings"

type AllowedOrigins map[string]struct{}
type nullValue = struct{}

func NewAllowedOrigins(origins ...string) AllowedOrigins {
	a := make(AllowedOrigins, len(origins))
	for _, o := range origins {
		a[strings.TrimRight(o, "/")] = nullValue{}
	}
	return a
}

func (a AllowedOrigins) IsAllowedOrigin(origin string) bool {
	_, ok := a[origin]
	return ok
}

func (a AllowedOrigins) String() string {
	var origins []string
	for k := range a {
		origins = append(origins, k)
	}
	return strings.Join(origins, ", ")
}

// Cors holds the cross-origin policy for browser clients.
type Cors struct {
	AllowedOrigins AllowedOrigins
	AllowedMethods []string `validate:"required,dive,required"`
	AllowedHeaders []string `validate:"required,dive,required"`
}

func loadCors() Cors {
	return Cors{
		AllowedOrigins: NewAllowedOrigins(getEnvList("CORS_ORIGINS", []string{"http://localhost:3000", "http://127.0.0.1:3000"})...),
		AllowedMethods: getEnvList("CORS_METHODS", []string{"GET", "POST", "OPTIONS"}),
		AllowedHeaders: getEnvList("CORS_HEADERS", []string{"*"}),
	}
}

func (c Cors) MethodsHeader() string {
	return strings.Join(c.AllowedMethods, ", ")
}

// HeadersHeader returns the Access-Control-Allow-Headers value. A "*" entry
// echoes whatever the preflight asked for.
func (c Cors) HeadersHeader(requested string) string {
	for _, h := range c.AllowedHeaders {
		if h == "*" {
			return requested
		}
	}
	return strings.Join(c.AllowedHeaders, ", ")
}
