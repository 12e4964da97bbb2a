package config_test

import (
	"strings"
	"testing"

	"github.com/fungera/fungera/config"
)

func TestDefaultSetAndDisplay(t *testing.T) {
	cfg := config.Default()

	if err := cfg.Set("random_rate", 250); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if cfg.RandomRate != 250 {
		t.Errorf("RandomRate = %d, want 250", cfg.RandomRate)
	}

	var sb strings.Builder
	cfg.Display(&sb)
	if !strings.Contains(sb.String(), "RandomRate") {
		t.Error("Display output should mention RandomRate")
	}
}

func TestSetUnknownFieldFails(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Set("not_a_real_field", 1); err == nil {
		t.Error("Set should fail for an unknown field name")
	}
}

func TestSetTypeMismatchFails(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Set("stack_length", []int{1, 2, 3}); err == nil {
		t.Error("Set should fail when the value cannot convert to the field type")
	}
}
