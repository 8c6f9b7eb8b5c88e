package i18n

import (
	"os"
	"path/filepath"
	"testing"
)

func writeLocale(t *testing.T, dir, locale, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, locale+".json"), []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", locale, err)
	}
}

func TestLookupFallsBackToDefaultLocale(t *testing.T) {
	dir := t.TempDir()
	writeLocale(t, dir, "en-US", `{"player":{"nothingPlaying":"Nothing playing"}}`)
	writeLocale(t, dir, "es-ES", `{"player":{}}`)

	store, err := Load(dir, "en-US")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	got := store.T("es-ES", "player", "nothingPlaying")
	if got != "Nothing playing" {
		t.Fatalf("expected fallback to default locale, got %q", got)
	}
}

func TestLookupFallsBackToLiteralKey(t *testing.T) {
	dir := t.TempDir()
	writeLocale(t, dir, "en-US", `{"player":{}}`)

	store, err := Load(dir, "en-US")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	got := store.T("en-US", "player", "missingKey")
	if got != "player.missingKey" {
		t.Fatalf("expected literal fallback, got %q", got)
	}
}

func TestLookupPrefersRequestedLocale(t *testing.T) {
	dir := t.TempDir()
	writeLocale(t, dir, "en-US", `{"player":{"nothingPlaying":"Nothing playing"}}`)
	writeLocale(t, dir, "es-ES", `{"player":{"nothingPlaying":"No hay nada"}}`)

	store, err := Load(dir, "en-US")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	got := store.T("es-ES", "player", "nothingPlaying")
	if got != "No hay nada" {
		t.Fatalf("expected requested locale to win, got %q", got)
	}
}

func TestMalformedLocaleFileIsSkippedNotFatal(t *testing.T) {
	dir := t.TempDir()
	writeLocale(t, dir, "en-US", `{"player":{"nothingPlaying":"Nothing playing"}}`)
	writeLocale(t, dir, "broken", `not json`)

	store, err := Load(dir, "en-US")
	if err != nil {
		t.Fatalf("load should tolerate a malformed locale file: %v", err)
	}
	if got := store.T("en-US", "player", "nothingPlaying"); got != "Nothing playing" {
		t.Fatalf("unexpected lookup result: %q", got)
	}
}
