package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	portEnvVar     = "PORT"
	appNameVar     = "APP_NAME"
	appVersionVar  = "APP_VERSION"
	envEnvVar      = "ENV"
	logLevelEnvVar = "LOG_LEVEL"
)

// App holds process-level settings.
type App struct {
	Port     string
	Name     string `validate:"required"`
	Version  string `validate:"required"`
	Env      string `validate:"required"`
	LogLevel string `validate:"oneof=DEBUG INFO WARNING ERROR CRITICAL"`
}

func loadApp() App {
	return App{
		Port:     GetEnv(portEnvVar, "8888"),
		Name:     GetEnv(appNameVar, "Mood Music API"),
		Version:  GetEnv(appVersionVar, "1.0.0"),
		Env:      strings.ToUpper(GetEnv(envEnvVar, "DEV")),
		LogLevel: strings.ToUpper(GetEnv(logLevelEnvVar, "INFO")),
	}
}

// Addr returns the listen address, e.g. ":8888".
func (a App) Addr() string {
	if strings.HasPrefix(a.Port, ":") {
		return a.Port
	}
	return ":" + a.Port
}

// IsDev reports whether the process runs in the development environment.
func (a App) IsDev() bool {
	return a.Env == "DEV"
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(envVar string, defaultValue int, errs *[]string) int {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s: %q is not an integer", envVar, value))
		return defaultValue
	}
	return i
}

func getEnvFloat(envVar string, defaultValue float64, errs *[]string) float64 {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s: %q is not a number", envVar, value))
		return defaultValue
	}
	return f
}

// getEnvList splits a comma separated variable, dropping empty entries.
func getEnvList(envVar string, defaultValue []string) []string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	var list []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			list = append(list, part)
		}
	}
	return list
}
