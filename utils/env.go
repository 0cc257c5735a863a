package utils

import (
	"os"
	"strconv"
)

func GetEnv(env string) string {
	switch env {
	case "USER_AGENT":
		// Set the custom User-Agent header
		userAgent, userAgentExists := os.LookupEnv("USER_AGENT")
		if !userAgentExists {
			userAgent = "IPTV Smarters/1.0.3 (iPad; iOS 16.6.1; Scale/2.00)"
		}
		return userAgent
	default:
		return os.Getenv(env)
	}
}

func EnvInt(env string, def int) int {
	raw, ok := os.LookupEnv(env)
	if !ok {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return val
}

func EnvFloat(env string, def float64) float64 {
	raw, ok := os.LookupEnv(env)
	if !ok {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return val
}

func EnvBool(env string, def bool) bool {
	raw, ok := os.LookupEnv(env)
	if !ok {
		return def
	}
	return raw == "true" || raw == "1"
}
