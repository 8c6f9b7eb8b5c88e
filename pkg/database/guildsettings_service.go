package database

import "github.com/nashiradeer/hydrogen-go/pkg/models"

// GlobalGuildSettingsDM is the shared DataManager for the "guild_settings"
// collection. Queues and playback state never go through this path — only
// the preferences a guild has explicitly configured.
var GlobalGuildSettingsDM *DataManager[models.GuildSettings]
