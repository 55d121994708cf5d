package credentials

import (
	"os"
	"path/filepath"
	"testing"
)

func testFile(t *testing.T) File {
	t.Helper()
	return File{Path: filepath.Join(t.TempDir(), "nested", credFileName)}
}

func noEnv(string) string { return "" }

func TestSetGetDelete(t *testing.T) {
	f := testFile(t)
	if ki, err := f.Get("gemini"); err != nil || ki != nil {
		t.Fatalf("Get before Set = %+v, %v", ki, err)
	}
	if err := f.Set("gemini", "  Bearer g-key "); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := f.Set("openai", "sk-key"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	ki, err := f.Get("gemini")
	if err != nil || ki == nil || ki.Key != "g-key" || ki.Source != SourceFile {
		t.Fatalf("Get = %+v, %v", ki, err)
	}

	st, err := os.Stat(f.Path)
	if err != nil {
		t.Fatal(err)
	}
	if st.Mode().Perm() != 0o600 {
		t.Fatalf("file mode = %v, want 0600", st.Mode().Perm())
	}

	if err := f.Delete("gemini"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if ki, _ := f.Get("openai"); ki == nil || ki.Key != "sk-key" {
		t.Fatalf("other provider lost: %+v", ki)
	}
	if err := f.Delete("openai"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(f.Path); !os.IsNotExist(err) {
		t.Fatalf("file still present after last delete: %v", err)
	}
	if err := f.Delete("openai"); err != nil {
		t.Fatalf("Delete twice: %v", err)
	}
}

func TestSetRejectsEmpty(t *testing.T) {
	if err := testFile(t).Set("gemini", "Bearer  "); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestResolveOrder(t *testing.T) {
	f := testFile(t)
	if err := f.Set("gemini", "file-key"); err != nil {
		t.Fatal(err)
	}
	env := func(k string) string {
		if k == "GOOGLE_API_KEY" {
			return "env-key"
		}
		return ""
	}
	tests := []struct {
		configured string
		getenv     func(string) string
		key, src   string
	}{
		{"cfg-key", env, "cfg-key", SourceConfig},
		{"", env, "env-key", SourceEnv},
		{"", noEnv, "file-key", SourceFile},
	}
	for _, tt := range tests {
		ki, err := f.Resolve("gemini", tt.configured, tt.getenv)
		if err != nil || ki == nil {
			t.Fatalf("Resolve = %+v, %v", ki, err)
		}
		if ki.Key != tt.key || ki.Source != tt.src {
			t.Fatalf("Resolve = %s/%s, want %s/%s", ki.Key, ki.Source, tt.key, tt.src)
		}
	}
	if ki, err := f.Resolve("openai", "", noEnv); err != nil || ki != nil {
		t.Fatalf("Resolve openai = %+v, %v", ki, err)
	}
}

func TestMasked(t *testing.T) {
	if got := (KeyInfo{Key: "sk-1234567890"}).Masked(); got != "sk-1*****7890" {
		t.Fatalf("Masked = %q", got)
	}
	if got := (KeyInfo{Key: "short"}).Masked(); got != "*****" {
		t.Fatalf("Masked = %q", got)
	}
}
