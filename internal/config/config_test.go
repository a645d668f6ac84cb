package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8311,
		},
		Extractor: ExtractorConfig{
			Python: "/usr/bin/python3",
			Binary: "/usr/local/bin/youtube-dl",
		},
		Transcoder: TranscoderConfig{
			Path:      "/usr/bin/ffmpeg",
			Verbosity: "error",
		},
	}
}

func TestConfig_Validate_Success(t *testing.T) {
	cfg := validConfig()

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() should pass, got %v", err)
	}
}

func TestConfig_Validate_MissingExtractorBinary(t *testing.T) {
	cfg := validConfig()
	cfg.Extractor.Binary = ""

	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should fail for missing EXTRACTOR_BINARY")
	}
}

func TestConfig_Validate_MissingTranscoderPath(t *testing.T) {
	cfg := validConfig()
	cfg.Transcoder.Path = ""

	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should fail for missing TRANSCODER_PATH")
	}
}

func TestConfig_Validate_PortRange(t *testing.T) {
	tests := []struct {
		name    string
		port    int
		wantErr bool
	}{
		{"valid", 8311, false},
		{"zero", 0, true},
		{"negative", -1, true},
		{"too high", 70000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Server.Port = tt.port

			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestServerConfig_Address(t *testing.T) {
	tests := []struct {
		name string
		cfg  ServerConfig
		want string
	}{
		{"default", ServerConfig{Host: "0.0.0.0", Port: 8311}, "0.0.0.0:8311"},
		{"localhost", ServerConfig{Host: "localhost", Port: 8080}, "localhost:8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Address(); got != tt.want {
				t.Errorf("Address() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoad_FromYAMLFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
extractor:
  binary: "/opt/youtube-dl"
  params: ["--no-warnings"]
transcoder:
  path: "/usr/bin/ffmpeg"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Extractor.Binary != "/opt/youtube-dl" {
		t.Errorf("Extractor.Binary = %q, want %q", cfg.Extractor.Binary, "/opt/youtube-dl")
	}
	if len(cfg.Extractor.Params) != 1 || cfg.Extractor.Params[0] != "--no-warnings" {
		t.Errorf("Extractor.Params = %v, want [--no-warnings]", cfg.Extractor.Params)
	}
	if cfg.Transcoder.Verbosity != "error" {
		t.Errorf("Transcoder.Verbosity default = %q, want %q", cfg.Transcoder.Verbosity, "error")
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
extractor:
  binary: "/opt/youtube-dl"
transcoder:
  path: "/usr/bin/ffmpeg"
  verbosity: "info"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("EXTRACTOR_BINARY", "/env/youtube-dl")
	t.Setenv("TRANSCODER_VERBOSITY", "quiet")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Extractor.Binary != "/env/youtube-dl" {
		t.Errorf("Extractor.Binary should be from env, got %q", cfg.Extractor.Binary)
	}
	if cfg.Transcoder.Verbosity != "quiet" {
		t.Errorf("Transcoder.Verbosity should be from env, got %q", cfg.Transcoder.Verbosity)
	}
}

func TestLoad_NonexistentFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("Load should fail for nonexistent file")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	t.Setenv("EXTRACTOR_BINARY", "")
	t.Setenv("TRANSCODER_PATH", "")

	if _, err := Load(""); err == nil {
		t.Error("Load should fail validation without required values")
	}
}
