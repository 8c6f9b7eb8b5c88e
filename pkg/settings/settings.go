// Package settings persists per-guild preferences — default locale, default
// loop mode, announce channel — the way the teacher's DataManager persists
// any other cached Mongo-backed collection. It never touches queue or
// playback state; that stays in-memory inside internal/orchestrator for the
// lifetime of the process.
package settings

import (
	"fmt"

	"github.com/nashiradeer/hydrogen-go/pkg/database"
	"github.com/nashiradeer/hydrogen-go/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
)

// Defaults returned for a guild that has never saved a preference.
const (
	DefaultLocale   = "en-US"
	DefaultLoopMode = 0 // mirrors orchestrator.LoopNone's ordinal
)

// Store reads and writes GuildSettings through the shared
// GlobalGuildSettingsDM DataManager.
type Store struct {
	dm *database.DataManager[models.GuildSettings]
}

// New wraps the global GuildSettings DataManager. InitGlobalDataManagers
// must have run first.
func New() *Store {
	return &Store{dm: database.GlobalGuildSettingsDM}
}

// Get returns a guild's settings, or the documented defaults if the guild
// has never configured anything.
func (s *Store) Get(guildID string) (models.GuildSettings, error) {
	if s.dm == nil {
		return defaults(guildID), fmt.Errorf("settings: data manager not initialized")
	}

	doc, err := s.dm.Get(bson.M{"guildId": guildID})
	if err != nil {
		return defaults(guildID), err
	}
	if doc == nil {
		return defaults(guildID), nil
	}
	return *doc, nil
}

// Set persists a guild's settings. Intended to be called only from an
// explicit settings-change command, never from the playback hot path.
func (s *Store) Set(gs models.GuildSettings) error {
	if s.dm == nil {
		return fmt.Errorf("settings: data manager not initialized")
	}
	_, err := s.dm.Set(bson.M{"guildId": gs.GuildID}, gs)
	return err
}

func defaults(guildID string) models.GuildSettings {
	return models.GuildSettings{
		GuildID:         guildID,
		DefaultLocale:   DefaultLocale,
		DefaultLoopMode: DefaultLoopMode,
	}
}
