package vault

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vsh/internal/vsh"
)

func TestFileSystemVault(t *testing.T) {
	testVaultContract(t, func(t *testing.T) vsh.Vault {
		v, err := NewFileSystemVault("test", t.TempDir())
		if err != nil {
			t.Fatalf("NewFileSystemVault() error = %v", err)
		}
		return v
	})
}

func TestNewFileSystemVault(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "vault")

	v, err := NewFileSystemVault("test", root)
	if err != nil {
		t.Fatalf("NewFileSystemVault() error = %v", err)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		t.Errorf("vault root not created: %v", err)
	}
	if v.name != "test" {
		t.Errorf("name = %q, want %q", v.name, "test")
	}
}

func TestFileSystemVault_Layout(t *testing.T) {
	root := t.TempDir()
	v, err := NewFileSystemVault("test", root)
	if err != nil {
		t.Fatalf("NewFileSystemVault() error = %v", err)
	}

	data := "payload"
	if err := v.Put("snapshots/work.toml.age", strings.NewReader(data), int64(len(data))); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := os.ReadFile(filepath.Join(root, "snapshots", "work.toml.age"))
	if err != nil {
		t.Fatalf("blob file not written: %v", err)
	}
	if string(got) != data {
		t.Errorf("blob file = %q, want %q", got, data)
	}

	entries, err := os.ReadDir(filepath.Join(root, "snapshots"))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("snapshots dir has %d entries, want 1 (temp files left behind?)", len(entries))
	}
}

func TestFileSystemVault_FailedPutLeavesNoTempFile(t *testing.T) {
	root := t.TempDir()
	v, err := NewFileSystemVault("test", root)
	if err != nil {
		t.Fatalf("NewFileSystemVault() error = %v", err)
	}

	if err := v.Put("k", strings.NewReader("short"), 99); err == nil {
		t.Fatal("Put() expected size mismatch error")
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("vault root has %d entries after failed Put, want 0", len(entries))
	}
}

func TestFileSystemVault_ExistsIgnoresDirectories(t *testing.T) {
	root := t.TempDir()
	v, err := NewFileSystemVault("test", root)
	if err != nil {
		t.Fatalf("NewFileSystemVault() error = %v", err)
	}
	if err := os.Mkdir(filepath.Join(root, "snapshots"), 0o755); err != nil {
		t.Fatal(err)
	}

	ok, err := v.Exists("snapshots")
	if err != nil || ok {
		t.Errorf("Exists(dir) = %v, %v, want false, nil", ok, err)
	}
}

func TestFileSystemVault_ValidateSetup(t *testing.T) {
	t.Run("root removed", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "vault")
		v, err := NewFileSystemVault("test", root)
		if err != nil {
			t.Fatalf("NewFileSystemVault() error = %v", err)
		}
		if err := os.RemoveAll(root); err != nil {
			t.Fatal(err)
		}
		if err := v.ValidateSetup(); err == nil {
			t.Error("ValidateSetup() expected error for missing root")
		}
	})

	t.Run("root is a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			t.Fatal(err)
		}
		v := &FileSystemVault{name: "test", root: path}
		if err := v.ValidateSetup(); err == nil {
			t.Error("ValidateSetup() expected error when root is a file")
		}
	})
}
