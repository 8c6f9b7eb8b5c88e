package utils

import (
	"fmt"

	"github.com/nashiradeer/hydrogen-go/internal/orchestrator"
	"github.com/nashiradeer/hydrogen-go/pkg/database"
	"github.com/nashiradeer/hydrogen-go/pkg/discord"
	"github.com/nashiradeer/hydrogen-go/pkg/errpanel"
)

// createStatusCommand creates the /utils status subcommand
func createStatusCommand() *discord.Command {
	return discord.NewCommand(
		"status",
		"Shows the bot's current status",
		"utils",
		statusHandler,
	)
}

// statusHandler handles the /utils status command
func statusHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errpanel.RecoverMiddleware()()

		dbStatus, _ := database.Get().GetStatus()

		nodes, players := 0, 0
		if o := orchestrator.Get(); o != nil {
			nodes = o.NodeCount()
			players = o.PlayerCount()
		}

		ctx.Reply(fmt.Sprintf(
			"**Bot status**\n"+
				"- Gateway: online\n"+
				"- Database: %s\n"+
				"- Guilds: %d\n"+
				"- Lavalink nodes: %d\n"+
				"- Active players: %d",
			dbStatus,
			ctx.Client.GuildCount(),
			nodes,
			players,
		))
	}()
	return nil
}
