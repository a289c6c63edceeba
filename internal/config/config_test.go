package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Import.MaxPayloadSize != 33554432 {
		t.Errorf("Import.MaxPayloadSize = %d, want %d", cfg.Import.MaxPayloadSize, 33554432)
	}
	if cfg.Import.DefaultSourceName != "unknown" {
		t.Errorf("Import.DefaultSourceName = %q, want %q", cfg.Import.DefaultSourceName, "unknown")
	}
	if cfg.Rate.RequestsPerMinute != 100 {
		t.Errorf("Rate.RequestsPerMinute = %d, want %d", cfg.Rate.RequestsPerMinute, 100)
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	os.Setenv("SERVER_PORT", "9090")
	os.Setenv("IMPORT_DEFAULT_SOURCE", "SYS_B")
	os.Setenv("LOG_LEVEL", "debug")
	defer func() {
		os.Unsetenv("SERVER_PORT")
		os.Unsetenv("IMPORT_DEFAULT_SOURCE")
		os.Unsetenv("LOG_LEVEL")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Import.DefaultSourceName != "SYS_B" {
		t.Errorf("Import.DefaultSourceName = %q, want %q", cfg.Import.DefaultSourceName, "SYS_B")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoad_Duration(t *testing.T) {
	os.Setenv("SERVER_READ_TIMEOUT", "45s")
	os.Setenv("SERVER_SHUTDOWN_TIMEOUT", "1m30s")
	defer func() {
		os.Unsetenv("SERVER_READ_TIMEOUT")
		os.Unsetenv("SERVER_SHUTDOWN_TIMEOUT")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.ReadTimeout != 45*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want %v", cfg.Server.ReadTimeout, 45*time.Second)
	}
	if cfg.Server.ShutdownTimeout != 90*time.Second {
		t.Errorf("Server.ShutdownTimeout = %v, want %v", cfg.Server.ShutdownTimeout, 90*time.Second)
	}
}

func TestLoad_CommaSeparatedSlice(t *testing.T) {
	os.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 172.16.0.0/12 , 192.168.0.0/16")
	defer os.Unsetenv("TRUSTED_PROXIES")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []string{"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"}
	if len(cfg.Security.TrustedProxies) != len(want) {
		t.Fatalf("TrustedProxies = %v, want %v", cfg.Security.TrustedProxies, want)
	}
	for i, cidr := range want {
		if cfg.Security.TrustedProxies[i] != cidr {
			t.Errorf("TrustedProxies[%d] = %q, want %q", i, cfg.Security.TrustedProxies[i], cidr)
		}
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	os.Setenv("SERVER_PORT", "70000")
	defer os.Unsetenv("SERVER_PORT")

	if _, err := Load(); err == nil {
		t.Fatal("Load() expected error for out-of-range SERVER_PORT")
	}
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	os.Setenv("LOG_LEVEL", "verbose")
	defer os.Unsetenv("LOG_LEVEL")

	if _, err := Load(); err == nil {
		t.Fatal("Load() expected error for unknown LOG_LEVEL")
	}
}
