package vault

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"vsh/internal/vsh"
)

func TestCheckKey(t *testing.T) {
	tests := []struct {
		key     string
		wantErr bool
	}{
		{"snapshots/work.toml.age", false},
		{"plain", false},
		{"", true},
		{"/abs", true},
		{"a/../b", true},
		{"..", true},
		{"a/./b", true},
		{"a//b", true},
		{"trailing/", true},
		{`back\slash`, true},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if err := checkKey(tt.key); (err != nil) != tt.wantErr {
				t.Errorf("checkKey(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
		})
	}
}

// testVaultContract runs the behavior every vault backend shares.
func testVaultContract(t *testing.T, newVault func(t *testing.T) vsh.Vault) {
	t.Run("put then get", func(t *testing.T) {
		v := newVault(t)
		data := "snapshot bytes"
		if err := v.Put("snapshots/a.toml.age", strings.NewReader(data), int64(len(data))); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		var buf bytes.Buffer
		if err := v.Get("snapshots/a.toml.age", &buf); err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if buf.String() != data {
			t.Errorf("Get() = %q, want %q", buf.String(), data)
		}
	})

	t.Run("put replaces", func(t *testing.T) {
		v := newVault(t)
		for _, data := range []string{"first version", "second"} {
			if err := v.Put("k", strings.NewReader(data), int64(len(data))); err != nil {
				t.Fatalf("Put(%q) error = %v", data, err)
			}
		}
		var buf bytes.Buffer
		if err := v.Get("k", &buf); err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if buf.String() != "second" {
			t.Errorf("Get() = %q, want %q", buf.String(), "second")
		}
	})

	t.Run("empty blob", func(t *testing.T) {
		v := newVault(t)
		if err := v.Put("empty", strings.NewReader(""), 0); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		ok, err := v.Exists("empty")
		if err != nil || !ok {
			t.Errorf("Exists() = %v, %v, want true, nil", ok, err)
		}
	})

	t.Run("size mismatch", func(t *testing.T) {
		v := newVault(t)
		if err := v.Put("k", strings.NewReader("hello"), 100); err == nil {
			t.Error("Put() expected size mismatch error")
		}
		if ok, _ := v.Exists("k"); ok {
			t.Error("Exists() = true after a failed Put")
		}
	})

	t.Run("missing blob", func(t *testing.T) {
		v := newVault(t)
		var buf bytes.Buffer
		if err := v.Get("nope", &buf); !errors.Is(err, vsh.ErrBlobNotFound) {
			t.Errorf("Get() error = %v, want ErrBlobNotFound", err)
		}
		ok, err := v.Exists("nope")
		if err != nil || ok {
			t.Errorf("Exists() = %v, %v, want false, nil", ok, err)
		}
	})

	t.Run("invalid key", func(t *testing.T) {
		v := newVault(t)
		if err := v.Put("../escape", strings.NewReader("x"), 1); err == nil {
			t.Error("Put() with ../ key expected error")
		}
	})

	t.Run("validate setup", func(t *testing.T) {
		if err := newVault(t).ValidateSetup(); err != nil {
			t.Errorf("ValidateSetup() error = %v", err)
		}
	})
}
