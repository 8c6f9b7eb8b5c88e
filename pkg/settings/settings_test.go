package settings

import "testing"

func TestGetReturnsDefaultsWhenDataManagerUnset(t *testing.T) {
	s := &Store{}

	got, err := s.Get("guild-1")
	if err == nil {
		t.Fatal("expected an error when the data manager is not initialized")
	}
	if got.GuildID != "guild-1" {
		t.Fatalf("expected guild id to be preserved in defaults, got %q", got.GuildID)
	}
	if got.DefaultLocale != DefaultLocale {
		t.Fatalf("expected default locale %q, got %q", DefaultLocale, got.DefaultLocale)
	}
}

func TestSetFailsFastWhenDataManagerUnset(t *testing.T) {
	s := &Store{}

	if err := s.Set(defaults("guild-1")); err == nil {
		t.Fatal("expected an error when the data manager is not initialized")
	}
}
