package utils

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/nashiradeer/hydrogen-go/internal/orchestrator"
	"github.com/nashiradeer/hydrogen-go/pkg/config"
	"github.com/nashiradeer/hydrogen-go/pkg/discord"
	"github.com/nashiradeer/hydrogen-go/pkg/errpanel"
	"github.com/bwmarrin/discordgo"
)

// createStatsCommand creates the /utils stats subcommand
func createStatsCommand() *discord.Command {
	return discord.NewCommand(
		"stats",
		"Shows runtime and playback statistics",
		"utils",
		statsHandler,
	)
}

// statsHandler handles the /utils stats command
func statsHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errpanel.RecoverMiddleware()()

		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		numGoroutines := runtime.NumGoroutine()
		numCPU := runtime.NumCPU()
		goVersion := strings.TrimPrefix(runtime.Version(), "go")
		discordgoVersion := discordgo.VERSION

		guildCount := ctx.Client.GuildCount()
		memberCount := 0
		for _, guild := range ctx.Session.State.Guilds {
			memberCount += guild.MemberCount
		}

		nodes, players := 0, 0
		if o := orchestrator.Get(); o != nil {
			nodes = o.NodeCount()
			players = o.PlayerCount()
		}

		uptime := time.Since(ctx.Client.StartTime)

		embed := &discordgo.MessageEmbed{
			Title: "Bot statistics",
			Color: 0x5865F2,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Version", Value: config.Version, Inline: true},
				{Name: "Go", Value: goVersion, Inline: true},
				{Name: "discordgo", Value: discordgoVersion, Inline: true},
				{Name: "Memory", Value: fmt.Sprintf("%.2f MB", float64(m.Alloc)/1024/1024), Inline: true},
				{Name: "Goroutines", Value: fmt.Sprintf("%d / %d CPUs", numGoroutines, numCPU), Inline: true},
				{Name: "Uptime", Value: formatDuration(uptime), Inline: true},
				{Name: "Guilds", Value: fmt.Sprintf("%d", guildCount), Inline: true},
				{Name: "Members", Value: fmt.Sprintf("%d", memberCount), Inline: true},
				{Name: "Lavalink nodes", Value: fmt.Sprintf("%d", nodes), Inline: true},
				{Name: "Active players", Value: fmt.Sprintf("%d", players), Inline: true},
			},
			Footer: &discordgo.MessageEmbedFooter{
				Text:    "hydrogen",
				IconURL: ctx.Client.Session.State.User.AvatarURL(""),
			},
			Timestamp: time.Now().Format(time.RFC3339),
		}

		ctx.ReplyEmbed(embed)
	}()
	return nil
}

// formatDuration formats a time.Duration into a human-readable string
func formatDuration(dur time.Duration) string {
	days := int(dur.Hours() / 24)
	hours := int(dur.Hours()) % 24
	minutes := int(dur.Minutes()) % 60
	seconds := int(dur.Seconds()) % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if seconds > 0 {
		parts = append(parts, fmt.Sprintf("%ds", seconds))
	}

	return strings.Join(parts, " ")
}
