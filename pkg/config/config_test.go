package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name  string `yaml:"name"`
	Port  int    `yaml:"port"`
	Inner struct {
		Tags []string `yaml:"tags"`
	} `yaml:"inner"`
}

type validated struct {
	Port int `yaml:"port"`
}

func (v *validated) Validate() error {
	if v.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("COURSEBOOK_TEST_NAME", "from-env")
	path := writeFile(t, "name: ${COURSEBOOK_TEST_NAME}\nport: 8080\ninner:\n  tags: [a, b]\n")

	var got sample
	if err := Load(path, &got); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Name != "from-env" || got.Port != 8080 || len(got.Inner.Tags) != 2 {
		t.Errorf("got %+v", got)
	}
}

func TestLoad_KeepsDefaultsForMissingKeys(t *testing.T) {
	path := writeFile(t, "port: 9000\n")
	got := sample{Name: "default"}
	if err := Load(path, &got); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Name != "default" || got.Port != 9000 {
		t.Errorf("got %+v", got)
	}
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	path := writeFile(t, "name: x\nprot: 80\n")
	var got sample
	err := Load(path, &got)
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "prot") {
		t.Errorf("error should name the key: %v", err)
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	path := writeFile(t, "")
	got := sample{Port: 1}
	if err := Load(path, &got); err != nil {
		t.Fatalf("empty file should load: %v", err)
	}
	if got.Port != 1 {
		t.Errorf("port = %d, want default", got.Port)
	}
}

func TestLoad_Validates(t *testing.T) {
	path := writeFile(t, "port: 0\n")
	var got validated
	err := Load(path, &got)
	if err == nil || !strings.Contains(err.Error(), "validation failed") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	var got sample
	err := Load(filepath.Join(t.TempDir(), "nope.yaml"), &got)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want ErrNotExist", err)
	}
}

func TestLoadOptional(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	got := validated{Port: 80}
	found, err := LoadOptional(missing, &got)
	if err != nil || found {
		t.Fatalf("found=%v err=%v, want defaults kept", found, err)
	}

	bad := validated{}
	if _, err := LoadOptional(missing, &bad); err == nil {
		t.Fatal("defaults are still validated")
	}

	path := writeFile(t, "port: 81\n")
	found, err = LoadOptional(path, &got)
	if err != nil || !found || got.Port != 81 {
		t.Fatalf("found=%v err=%v port=%d", found, err, got.Port)
	}
}
