package database_test

import (
	"errors"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"testing"

	"github.com/JaimeStill/medora/pkg/database"
)

func TestFinalizeDefaults(t *testing.T) {
	cfg := database.Config{User: "medora"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	tests := []struct {
		name     string
		got      any
		expected any
	}{
		{"host", cfg.Host, "localhost"},
		{"port", cfg.Port, 5432},
		{"name", cfg.Name, "medora"},
		{"ssl_mode", cfg.SSLMode, "disable"},
		{"max_open_conns", cfg.MaxOpenConns, 10},
		{"max_idle_conns", cfg.MaxIdleConns, 2},
		{"conn_max_lifetime", cfg.ConnMaxLifetime, "15m"},
		{"conn_timeout", cfg.ConnTimeout, "5s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %v, want %v", tt.got, tt.expected)
			}
		})
	}
}

func TestFinalizeEnvOverrides(t *testing.T) {
	t.Setenv("TEST_DB_HOST", "db.internal")
	t.Setenv("TEST_DB_PORT", "5433")
	t.Setenv("TEST_DB_USER", "envuser")
	t.Setenv("TEST_DB_PASSWORD", "envpass")
	t.Setenv("TEST_DB_MAX_OPEN", "50")
	t.Setenv("TEST_DB_TIMEOUT", "10s")

	env := &database.Env{
		Host:         "TEST_DB_HOST",
		Port:         "TEST_DB_PORT",
		User:         "TEST_DB_USER",
		Password:     "TEST_DB_PASSWORD",
		MaxOpenConns: "TEST_DB_MAX_OPEN",
		ConnTimeout:  "TEST_DB_TIMEOUT",
	}

	cfg := database.Config{}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	tests := []struct {
		name     string
		got      any
		expected any
	}{
		{"host", cfg.Host, "db.internal"},
		{"port", cfg.Port, 5433},
		{"user", cfg.User, "envuser"},
		{"password", cfg.Password, "envpass"},
		{"max_open_conns", cfg.MaxOpenConns, 50},
		{"conn_timeout", cfg.ConnTimeout, "10s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %v, want %v", tt.got, tt.expected)
			}
		})
	}
}

func TestFinalizeValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     database.Config
		wantErr string
	}{
		{"missing user", database.Config{}, "user required"},
		{"invalid port", database.Config{User: "u", Port: 70000}, "invalid port"},
		{"idle exceeds open", database.Config{User: "u", MaxOpenConns: 2, MaxIdleConns: 5}, "max_idle_conns cannot exceed"},
		{"invalid conn_max_lifetime", database.Config{User: "u", ConnMaxLifetime: "bad"}, "invalid conn_max_lifetime"},
		{"invalid conn_timeout", database.Config{User: "u", ConnTimeout: "bad"}, "invalid conn_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize(nil)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, database.ErrInvalidConfig) {
				t.Errorf("error %v should wrap ErrInvalidConfig", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	base := database.Config{Host: "localhost", Port: 5432, Name: "medora", User: "base"}
	overlay := database.Config{Host: "remote", Port: 5433}
	base.Merge(&overlay)

	if base.Host != "remote" || base.Port != 5433 {
		t.Errorf("overlay not applied: %+v", base)
	}
	if base.Name != "medora" || base.User != "base" {
		t.Errorf("base values lost: %+v", base)
	}
}

func TestURL(t *testing.T) {
	cfg := database.Config{User: "medora", Password: "p@ss:word/1"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	u, err := url.Parse(cfg.URL())
	if err != nil {
		t.Fatalf("parse URL: %v", err)
	}

	if u.Scheme != "postgres" {
		t.Errorf("scheme = %q", u.Scheme)
	}
	if u.Host != "localhost:5432" {
		t.Errorf("host = %q", u.Host)
	}
	if u.Path != "/medora" {
		t.Errorf("path = %q", u.Path)
	}
	if pw, _ := u.User.Password(); pw != "p@ss:word/1" {
		t.Errorf("password = %q", pw)
	}
	if got := u.Query().Get("sslmode"); got != "disable" {
		t.Errorf("sslmode = %q", got)
	}
	if got := u.Query().Get("connect_timeout"); got != "5" {
		t.Errorf("connect_timeout = %q", got)
	}
}

func TestNewDoesNotConnect(t *testing.T) {
	cfg := database.Config{User: "medora", Host: "db.invalid"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	sys, err := database.New(&cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if sys.Connection() == nil {
		t.Fatal("Connection() returned nil")
	}
}
