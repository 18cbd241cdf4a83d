/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"reflect"
	"testing"
)

func validConfig() Config {
	return Config{
		allowedOrigins: []string{"*"},
		maxMessageSize: 1024,
		port:           8080,
		sendBuffer:     8,
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"tls pair", func(c *Config) { c.tlsCert, c.tlsKey = "cert.pem", "key.pem" }, false},
		{"cert without key", func(c *Config) { c.tlsCert = "cert.pem" }, true},
		{"port too low", func(c *Config) { c.port = 0 }, true},
		{"port too high", func(c *Config) { c.port = 65536 }, true},
		{"zero message size", func(c *Config) { c.maxMessageSize = 0 }, true},
		{"zero send buffer", func(c *Config) { c.sendBuffer = 0 }, true},
		{"no origins", func(c *Config) { c.allowedOrigins = nil }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigScheme(t *testing.T) {
	cfg := validConfig()
	if cfg.scheme() != "http" {
		t.Fatalf("scheme = %s, want http", cfg.scheme())
	}

	cfg.tlsCert, cfg.tlsKey = "cert.pem", "key.pem"
	if cfg.scheme() != "https" {
		t.Fatalf("scheme = %s, want https", cfg.scheme())
	}
}

func TestFlagDefaults(t *testing.T) {
	cfg := &Config{}
	cmd := newCmd(cfg)

	if err := cmd.ParseFlags(nil); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	if cfg.port != 8080 || cfg.bind != "0.0.0.0" {
		t.Fatalf("listen = %s:%d, want 0.0.0.0:8080", cfg.bind, cfg.port)
	}
	if cfg.sendBuffer != 32 || cfg.maxMessageSize != 64*1024 {
		t.Fatalf("limits = %d/%d", cfg.sendBuffer, cfg.maxMessageSize)
	}
	if !reflect.DeepEqual(cfg.allowedOrigins, []string{"*"}) {
		t.Fatalf("origins = %v, want [*]", cfg.allowedOrigins)
	}
}

func TestFlagsFromEnvironment(t *testing.T) {
	t.Setenv("TURNROOM_PORT", "9999")
	t.Setenv("TURNROOM_ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")

	cfg := &Config{}
	newCmd(cfg)

	if cfg.port != 9999 {
		t.Fatalf("port = %d, want 9999", cfg.port)
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if !reflect.DeepEqual(cfg.allowedOrigins, want) {
		t.Fatalf("origins = %v, want %v", cfg.allowedOrigins, want)
	}
}

func TestExplicitFlagBeatsEnvironment(t *testing.T) {
	t.Setenv("TURNROOM_PORT", "9999")

	cfg := &Config{}
	cmd := newCmd(cfg)

	if err := cmd.ParseFlags([]string{"--port", "7000"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	if cfg.port != 7000 {
		t.Fatalf("port = %d, want 7000", cfg.port)
	}
}
