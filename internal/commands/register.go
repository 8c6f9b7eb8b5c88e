// Package commands provides a registry for organizing bot commands.
// Commands are organized in subdirectories by category (util, music, etc.)
package commands

import (
	"github.com/nashiradeer/hydrogen-go/internal/commands/utils"
	"github.com/nashiradeer/hydrogen-go/pkg/discord"
)

// RegisterAll registers all commands with the Discord client
func RegisterAll(client *discord.ExtendedClient) {
	// Utility commands (/utils ping|status|stats|help)
	utils.RegisterUtilsCommands(client)

	// Music commands
	RegisterMusicCommands(client)
}
