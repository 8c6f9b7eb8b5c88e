package utils

import (
	"github.com/nashiradeer/hydrogen-go/pkg/discord"
)

// RegisterUtilsCommands registers the /utils command group and its subcommands.
func RegisterUtilsCommands(client *discord.ExtendedClient) {
	pingCmd := createPingCommand()
	statusCmd := createStatusCommand()
	helpCmd := createHelpCommand()
	statsCmd := createStatsCommand()

	utilsGroup := client.CommandHandler.BuildCommandGroup(
		"utils",
		"Utility commands",
		pingCmd,
		statusCmd,
		helpCmd,
		statsCmd,
	)

	client.CommandHandler.AddGlobalCommand(utilsGroup)
}
