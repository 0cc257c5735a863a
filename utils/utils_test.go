package utils

import (
	"strings"
	"testing"
)

func TestGetEnvUserAgentDefault(t *testing.T) {
	ua := GetEnv("USER_AGENT")
	if !strings.Contains(ua, "IPTV Smarters") {
		t.Errorf("unexpected default user agent: %q", ua)
	}

	t.Setenv("USER_AGENT", "custom-agent/1.0")
	if GetEnv("USER_AGENT") != "custom-agent/1.0" {
		t.Error("USER_AGENT override ignored")
	}
}

func TestEnvInt(t *testing.T) {
	if EnvInt("UNSET_TEST_VAR", 7) != 7 {
		t.Error("expected default for unset var")
	}

	t.Setenv("SOME_INT", "42")
	if EnvInt("SOME_INT", 7) != 42 {
		t.Error("expected parsed value")
	}

	t.Setenv("SOME_INT", "not a number")
	if EnvInt("SOME_INT", 7) != 7 {
		t.Error("expected default for malformed value")
	}
}

func TestEnvFloat(t *testing.T) {
	t.Setenv("SOME_FLOAT", "2.5")
	if EnvFloat("SOME_FLOAT", 1) != 2.5 {
		t.Error("expected parsed value")
	}
	if EnvFloat("UNSET_TEST_VAR", 1.5) != 1.5 {
		t.Error("expected default for unset var")
	}
}

func TestEnvBool(t *testing.T) {
	t.Setenv("SOME_BOOL", "true")
	if !EnvBool("SOME_BOOL", false) {
		t.Error("expected true")
	}
	t.Setenv("SOME_BOOL", "0")
	if EnvBool("SOME_BOOL", true) {
		t.Error("expected false for 0")
	}
	if !EnvBool("UNSET_TEST_VAR", true) {
		t.Error("expected default for unset var")
	}
}
