// Package i18n loads the bot's translation files and resolves lookups with
// the fallback chain a chat bot needs: requested locale, then the default
// locale, then the literal key as a last resort so a missing string never
// renders blank.
package i18n

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/nashiradeer/hydrogen-go/pkg/logger"
)

// catalog is the two-level map a single {locale}.json file decodes into:
// category -> key -> string.
type catalog map[string]map[string]string

// Store holds every loaded locale's catalog and resolves lookups against
// them, falling back to a configured default locale.
type Store struct {
	mu            sync.RWMutex
	catalogs      map[string]catalog
	defaultLocale string
}

var store *Store

// Init loads dir into the global Store, replacing any store loaded before
// it. Unlike most packages in this codebase, i18n reload is intentionally
// not a sync.Once: an operator may want to reload translations without
// restarting the process.
func Init(dir, defaultLocale string) (*Store, error) {
	s, err := Load(dir, defaultLocale)
	if err != nil {
		return nil, err
	}
	store = s
	return store, nil
}

// Get returns the global Store, or nil if Init was never called.
func Get() *Store {
	return store
}

// Load reads every `{locale}.json` file in dir and builds a Store. A locale
// file that fails to parse is logged and skipped rather than aborting the
// whole load — a single malformed file should not take the bot offline.
func Load(dir, defaultLocale string) (*Store, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("i18n: reading %s: %w", dir, err)
	}

	s := &Store{
		catalogs:      make(map[string]catalog),
		defaultLocale: defaultLocale,
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		locale := entry.Name()[:len(entry.Name())-len(".json")]

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			logger.Warn(fmt.Sprintf("i18n: skipping %s: %v", entry.Name(), err), "I18N")
			continue
		}

		var c catalog
		if err := json.Unmarshal(data, &c); err != nil {
			logger.Warn(fmt.Sprintf("i18n: malformed %s: %v", entry.Name(), err), "I18N")
			continue
		}

		s.catalogs[locale] = c
	}

	return s, nil
}

// T resolves (locale, category, key), falling back to the default locale
// and finally to the literal "{category}.{key}" when both miss.
func (s *Store) T(locale, category, key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := lookup(s.catalogs[locale], category, key); ok {
		return v
	}
	if locale != s.defaultLocale {
		if v, ok := lookup(s.catalogs[s.defaultLocale], category, key); ok {
			return v
		}
	}
	return fmt.Sprintf("%s.%s", category, key)
}

func lookup(c catalog, category, key string) (string, bool) {
	if c == nil {
		return "", false
	}
	byKey, ok := c[category]
	if !ok {
		return "", false
	}
	v, ok := byKey[key]
	return v, ok
}

// Locales returns every locale currently loaded, for diagnostics.
func (s *Store) Locales() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.catalogs))
	for locale := range s.catalogs {
		out = append(out, locale)
	}
	return out
}
