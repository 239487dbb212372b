package fs

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// setTempCfg перенастраивает пользовательский конфиг‑каталог в temp для изоляции тестов.
func setTempCfg(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if runtime.GOOS == "windows" {
		t.Setenv("APPDATA", dir)
	} else {
		t.Setenv("XDG_CONFIG_HOME", dir)
	}
	return dir
}

func TestAuthFSStore_SaveLoad_Token_TrimsWhitespace(t *testing.T) {
	setTempCfg(t)
	st := AuthFSStore{}
	if err := st.Save("tok-123\n\n"); err != nil {
		t.Fatalf("save token: %v", err)
	}
	// Дозапишем вручную лишние пробелы в конец файла, чтобы проверить trim
	p, _ := st.path()
	f, _ := os.OpenFile(p, os.O_APPEND|os.O_WRONLY, 0o600)
	_, _ = f.WriteString("  \r\n")
	_ = f.Close()

	tok, err := st.Load()
	if err != nil {
		t.Fatalf("load token: %v", err)
	}
	if tok != "tok-123" {
		t.Fatalf("token not trimmed, got %q", tok)
	}
	if runtime.GOOS != "windows" {
		info, err := os.Stat(p)
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm() != 0o600 {
			t.Fatalf("token file must be 0600, got %v", info.Mode().Perm())
		}
	}
}

func TestAuthFSStore_Load_TokenMissingOrEmpty(t *testing.T) {
	dir := t.TempDir()
	st := AuthFSStore{Path: filepath.Join(dir, "tok")}

	// отсутствует файл
	if _, err := st.Load(); !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken for missing file, got %v", err)
	}
	// пустой файл
	if err := os.WriteFile(st.Path, []byte(" \n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Load(); !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken for empty file, got %v", err)
	}
	if err := st.Save("   "); err == nil {
		t.Fatalf("empty token must be rejected")
	}
}

func TestAuthFSStore_Clear(t *testing.T) {
	st := AuthFSStore{Path: filepath.Join(t.TempDir(), "nested", "tok")}
	if err := st.Clear(); err != nil {
		t.Fatalf("clear of missing file must succeed: %v", err)
	}
	if err := st.Save("abc"); err != nil {
		t.Fatal(err)
	}
	if err := st.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Load(); !errors.Is(err, ErrNoToken) {
		t.Fatalf("token must be gone after Clear, got %v", err)
	}
}
