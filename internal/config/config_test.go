package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
)

// resetViper clears all viper state between tests to avoid cross-contamination.
func resetViper() {
	viper.Reset()
}

func TestLoad_Defaults(t *testing.T) {
	resetViper()

	cfg := Load()

	if cfg.OnConflict != "side-file" {
		t.Errorf("OnConflict = %q, want side-file", cfg.OnConflict)
	}
	if cfg.Workers != 0 {
		t.Errorf("Workers = %d, want 0", cfg.Workers)
	}
	if cfg.Verbose {
		t.Error("Verbose should default to false")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	resetViper()

	os.Setenv("PETREL_ON_CONFLICT", "markers")
	os.Setenv("PETREL_WORKERS", "4")
	defer os.Unsetenv("PETREL_ON_CONFLICT")
	defer os.Unsetenv("PETREL_WORKERS")

	viper.SetEnvPrefix("PETREL")
	viper.AutomaticEnv()

	cfg := Load()
	if cfg.OnConflict != "markers" {
		t.Errorf("OnConflict = %q, want markers", cfg.OnConflict)
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Workers)
	}
}
