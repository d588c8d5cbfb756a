package notas

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStoreMissingFileIsEmpty(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "nope", "store.yaml"))
	v, ok, err := s.Get(UserNameKey)
	if err != nil || ok || v != "" {
		t.Fatalf("Get = %q, %v, %v", v, ok, err)
	}
}

func TestStoreSetGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notas", "store.yaml")
	s := NewStore(path)

	if err := s.Set("other", "kept"); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(UserNameKey, "López, Ana"); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(UserNameKey, "Pérez, María"); err != nil {
		t.Fatal(err)
	}

	name, err := DisplayName(NewStore(path))
	if err != nil || name != "Pérez, María" {
		t.Errorf("DisplayName = %q, %v", name, err)
	}
	if v, _, _ := s.Get("other"); v != "kept" {
		t.Errorf("other key lost: %q", v)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), UserNameKey+": ") {
		t.Errorf("store file:\n%s", data)
	}
}

func TestStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.yaml")
	if err := os.WriteFile(path, []byte("[not: a map"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := NewStore(path).Get(UserNameKey); err == nil {
		t.Error("expected decode error")
	}
}

func TestStoreNullDocument(t *testing.T) {
	for _, doc := range []string{"~\n", "null\n", ""} {
		path := filepath.Join(t.TempDir(), "store.yaml")
		if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
			t.Fatal(err)
		}
		s := NewStore(path)
		if v, ok, err := s.Get(UserNameKey); err != nil || ok || v != "" {
			t.Errorf("Get on %q = %q, %v, %v", doc, v, ok, err)
		}
		if err := s.Set(UserNameKey, "Pérez, María"); err != nil {
			t.Fatalf("Set on %q: %v", doc, err)
		}
		if name, _ := DisplayName(s); name != "Pérez, María" {
			t.Errorf("DisplayName after %q = %q", doc, name)
		}
	}
}

func TestConfigStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.yaml")
	cfg := &Config{StorePath: path}
	s, err := cfg.Store()
	if err != nil {
		t.Fatal(err)
	}
	if s.Path() != path {
		t.Errorf("store path = %q, want %q", s.Path(), path)
	}
}

const landingHTML = `<html><body>
<div class="menu"><a name="panel_155" href="#">  Pérez, María  </a></div>
</body></html>`

func TestRememberDisplayName(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "store.yaml"))
	page, err := LoadPage(strings.NewReader(landingHTML), discardLogger())
	if err != nil {
		t.Fatal(err)
	}

	name, err := RememberDisplayName(page, store)
	if err != nil || name != "Pérez, María" {
		t.Fatalf("RememberDisplayName = %q, %v", name, err)
	}
	if got, _ := DisplayName(store); got != "Pérez, María" {
		t.Errorf("cached = %q", got)
	}
}

func TestRememberDisplayNameWithoutElement(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.yaml")
	page, err := LoadPage(strings.NewReader("<html><body><p>hola</p></body></html>"), discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	name, err := RememberDisplayName(page, NewStore(path))
	if err != nil || name != "" {
		t.Fatalf("RememberDisplayName = %q, %v", name, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("store written without a name: %v", err)
	}
}

func TestIsLandingPage(t *testing.T) {
	if !IsLandingPage("https://intranet.upv.es/pls/soalu/sic_menu.Alumno?p_idioma=c") {
		t.Error("menu page not detected")
	}
	if IsLandingPage("https://intranet.upv.es/pls/soalu/sic_asi.notas") {
		t.Error("grades page detected as landing")
	}
}
