package utils

import (
	"github.com/nashiradeer/hydrogen-go/pkg/discord"
	"github.com/nashiradeer/hydrogen-go/pkg/errpanel"
)

// createHelpCommand creates the /utils help subcommand
func createHelpCommand() *discord.Command {
	return discord.NewCommand(
		"help",
		"Shows usage information",
		"utils",
		helpHandler,
	)
}

// helpHandler handles the /utils help command
func helpHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errpanel.RecoverMiddleware()()
		ctx.Reply(
			"**hydrogen commands**\n\n" +
				"- `/utils ping` - check gateway latency\n" +
				"- `/utils status` - bot and node status\n" +
				"- `/utils stats` - runtime statistics\n" +
				"- `/play <query>` - play or queue a track\n" +
				"- `/pause` - pause/resume playback\n" +
				"- `/skip` - skip to the next track\n" +
				"- `/prev` - go back to the previous track\n" +
				"- `/seek <position>` - seek within the current track\n" +
				"- `/loop <mode>` - set the queue's loop mode\n" +
				"- `/stop` - stop playback and leave the channel\n" +
				"- `/nowplaying` - show what's currently playing",
		)
	}()
	return nil
}
