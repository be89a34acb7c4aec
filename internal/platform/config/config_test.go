package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got, want := cfg.WSAddr, ":7070"; got != want {
		t.Fatalf("ws addr: got=%q want=%q", got, want)
	}
	if got, want := cfg.AnswerTimeout, 60*time.Second; got != want {
		t.Fatalf("answer timeout: got=%v want=%v", got, want)
	}
	if cfg.MinPlayers != 3 || cfg.MaxPlayers != 5 || cfg.Skulls != 8 {
		t.Fatalf("unexpected table defaults: %+v", cfg)
	}
	if cfg.DBDSN != "" || cfg.JoinSecret != "" {
		t.Fatalf("expected empty dsn and secret, got %+v", cfg)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SKIRMISH_MIN_PLAYERS", "2")
	t.Setenv("SKIRMISH_MAX_PLAYERS", "4")
	t.Setenv("SKIRMISH_LOBBY_WAIT", "5s")
	t.Setenv("SKIRMISH_ORIGIN_PATTERNS", "localhost:*,example.com")
	t.Setenv("SKIRMISH_SEED", "42")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MinPlayers != 2 || cfg.MaxPlayers != 4 || cfg.LobbyWait != 5*time.Second || cfg.Seed != 42 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if got, want := len(cfg.OriginPatterns), 2; got != want {
		t.Fatalf("origin patterns: got=%d want=%d", got, want)
	}
}

func TestLoad_Rejects(t *testing.T) {
	t.Chdir(t.TempDir())
	cases := map[string]map[string]string{
		"min above max":  {"SKIRMISH_MIN_PLAYERS": "4", "SKIRMISH_MAX_PLAYERS": "3"},
		"zero min":       {"SKIRMISH_MIN_PLAYERS": "0"},
		"too many seats": {"SKIRMISH_MAX_PLAYERS": "6"},
		"no skulls":      {"SKIRMISH_SKULLS": "0"},
		"zero timeout":   {"SKIRMISH_ANSWER_TIMEOUT": "0s"},
		"negative turns": {"SKIRMISH_MAX_TURNS": "-1"},
	}
	for name, vars := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range vars {
				t.Setenv(k, v)
			}
			if _, err := Load(); !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestLoad_BadValue(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SKIRMISH_SKULLS", "many")
	if _, err := Load(); err == nil {
		t.Fatal("expected parse error")
	}
}
