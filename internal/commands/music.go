// Package commands provides music commands for the bot.
package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nashiradeer/hydrogen-go/internal/discordbot"
	"github.com/nashiradeer/hydrogen-go/internal/orchestrator"
	"github.com/nashiradeer/hydrogen-go/pkg/discord"
	"github.com/nashiradeer/hydrogen-go/pkg/i18n"
	"github.com/nashiradeer/hydrogen-go/pkg/settings"

	"github.com/bwmarrin/discordgo"
)

// loopChoices mirrors orchestrator.LoopMode in the order the enum declares
// it, so a choice's index is its LoopMode value.
var loopChoices = []*discordgo.ApplicationCommandOptionChoice{
	{Name: "none", Value: "none"},
	{Name: "noautostart", Value: "noautostart"},
	{Name: "music", Value: "music"},
	{Name: "queue", Value: "queue"},
	{Name: "random", Value: "random"},
}

// RegisterMusicCommands registers all music commands
func RegisterMusicCommands(client *discord.ExtendedClient) {
	playCmd := discord.NewCommand(
		"play",
		"Play a song or add it to the queue",
		"music",
		playHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "query",
			Description: "Song name or URL",
			Required:    true,
		},
	).RequiresVoice()
	client.CommandHandler.RegisterCommand(playCmd)
	client.CommandHandler.AddGlobalCommand(playCmd.ToApplicationCommand())

	pauseCmd := discord.NewCommand(
		"pause",
		"Pause or resume playback",
		"music",
		pauseHandler,
	).RequiresVoice()
	client.CommandHandler.RegisterCommand(pauseCmd)
	client.CommandHandler.AddGlobalCommand(pauseCmd.ToApplicationCommand())

	skipCmd := discord.NewCommand(
		"skip",
		"Skip to the next song",
		"music",
		skipHandler,
	).RequiresVoice()
	client.CommandHandler.RegisterCommand(skipCmd)
	client.CommandHandler.AddGlobalCommand(skipCmd.ToApplicationCommand())

	prevCmd := discord.NewCommand(
		"prev",
		"Go back to the previous song",
		"music",
		prevHandler,
	).RequiresVoice()
	client.CommandHandler.RegisterCommand(prevCmd)
	client.CommandHandler.AddGlobalCommand(prevCmd.ToApplicationCommand())

	seekCmd := discord.NewCommand(
		"seek",
		"Seek to a position in the current song",
		"music",
		seekHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "position",
			Description: "Position to seek to (1:30, 90s, 1h2m)",
			Required:    true,
		},
	).RequiresVoice()
	client.CommandHandler.RegisterCommand(seekCmd)
	client.CommandHandler.AddGlobalCommand(seekCmd.ToApplicationCommand())

	loopCmd := discord.NewCommand(
		"loop",
		"Set the queue's loop mode",
		"music",
		loopHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "mode",
			Description: "Loop mode",
			Required:    true,
			Choices:     loopChoices,
		},
	).RequiresVoice()
	client.CommandHandler.RegisterCommand(loopCmd)
	client.CommandHandler.AddGlobalCommand(loopCmd.ToApplicationCommand())

	stopCmd := discord.NewCommand(
		"stop",
		"Stop playback and clear the queue",
		"music",
		stopHandler,
	).RequiresVoice()
	client.CommandHandler.RegisterCommand(stopCmd)
	client.CommandHandler.AddGlobalCommand(stopCmd.ToApplicationCommand())

	npCmd := discord.NewCommand(
		"nowplaying",
		"Show the song currently playing",
		"music",
		nowPlayingHandler,
	)
	client.CommandHandler.RegisterCommand(npCmd)
	client.CommandHandler.AddGlobalCommand(npCmd.ToApplicationCommand())
}

// locale resolves the guild's configured locale for translated replies,
// falling back to settings.DefaultLocale on any lookup failure.
func locale(guildID string) string {
	gs, _ := settings.New().Get(guildID)
	return gs.DefaultLocale
}

// t is a shorthand over the global i18n store, falling back to the literal
// key path when the store has not been initialized.
func t(loc, category, key string) string {
	store := i18n.Get()
	if store == nil {
		return fmt.Sprintf("%s.%s", category, key)
	}
	return store.T(loc, category, key)
}

// voiceChannelOf resolves the voice channel the invoking member currently
// occupies in the guild, if any.
func voiceChannelOf(ctx *discord.CommandContext) string {
	vs, err := ctx.Session.State.VoiceState(ctx.Interaction.GuildID, ctx.User().ID)
	if err != nil || vs == nil {
		return ""
	}
	return vs.ChannelID
}

// playHandler handles the /play command
func playHandler(ctx *discord.CommandContext) error {
	guildID := ctx.Interaction.GuildID
	loc := locale(guildID)

	query := ctx.GetStringOption("query")
	if query == "" {
		return ctx.ReplyEphemeral(t(loc, "error", "internal"))
	}

	channelID := voiceChannelOf(ctx)
	if channelID == "" {
		return ctx.ReplyEphemeral(t(loc, "command", "noVoiceChannel"))
	}

	if err := ctx.Defer(); err != nil {
		return err
	}

	if err := discordbot.JoinChannel(ctx.Client, guildID, channelID, false, false); err != nil {
		return ctx.EditReply(fmt.Sprintf("%s: %v", t(loc, "error", "internal"), err))
	}

	o := orchestrator.Get()
	if o == nil {
		return ctx.EditReply(t(loc, "error", "noNodes"))
	}

	result, err := o.PlayOrInit(context.Background(), guildID, loc, ctx.Interaction.ChannelID, query, ctx.User().ID)
	if err != nil {
		return ctx.EditReply(translateOrchestratorError(loc, err))
	}

	return ctx.EditReply(fmt.Sprintf(t(loc, "command", "queued"), result.Track.Title))
}

// pauseHandler handles the /pause command
func pauseHandler(ctx *discord.CommandContext) error {
	guildID := ctx.Interaction.GuildID
	loc := locale(guildID)

	o := orchestrator.Get()
	if o == nil {
		return ctx.ReplyEphemeral(t(loc, "error", "noNodes"))
	}
	player, ok := o.Player(guildID)
	if !ok {
		return ctx.ReplyEphemeral(t(loc, "command", "noPlayer"))
	}

	wantPaused := !player.Paused()
	if err := player.SetPaused(context.Background(), wantPaused); err != nil {
		return ctx.ReplyEphemeral(translateOrchestratorError(loc, err))
	}

	if wantPaused {
		return ctx.Reply(t(loc, "player", "paused"))
	}
	return ctx.Reply(t(loc, "player", "playing"))
}

// skipHandler handles the /skip command
func skipHandler(ctx *discord.CommandContext) error {
	guildID := ctx.Interaction.GuildID
	loc := locale(guildID)

	o := orchestrator.Get()
	if o == nil {
		return ctx.ReplyEphemeral(t(loc, "error", "noNodes"))
	}
	player, ok := o.Player(guildID)
	if !ok {
		return ctx.ReplyEphemeral(t(loc, "command", "noPlayer"))
	}

	track, ok, err := player.Skip(context.Background())
	if err != nil {
		return ctx.ReplyEphemeral(translateOrchestratorError(loc, err))
	}
	if !ok {
		return ctx.Reply(t(loc, "player", "queueEmpty"))
	}

	return ctx.Reply(fmt.Sprintf(t(loc, "command", "skipped"), track.Title))
}

// prevHandler handles the /prev command
func prevHandler(ctx *discord.CommandContext) error {
	guildID := ctx.Interaction.GuildID
	loc := locale(guildID)

	o := orchestrator.Get()
	if o == nil {
		return ctx.ReplyEphemeral(t(loc, "error", "noNodes"))
	}
	player, ok := o.Player(guildID)
	if !ok {
		return ctx.ReplyEphemeral(t(loc, "command", "noPlayer"))
	}

	track, ok, err := player.Prev(context.Background())
	if err != nil {
		return ctx.ReplyEphemeral(translateOrchestratorError(loc, err))
	}
	if !ok {
		return ctx.Reply(t(loc, "player", "queueEmpty"))
	}

	return ctx.Reply(fmt.Sprintf(t(loc, "command", "skipped"), track.Title))
}

// seekHandler handles the /seek command
func seekHandler(ctx *discord.CommandContext) error {
	guildID := ctx.Interaction.GuildID
	loc := locale(guildID)

	o := orchestrator.Get()
	if o == nil {
		return ctx.ReplyEphemeral(t(loc, "error", "noNodes"))
	}
	player, ok := o.Player(guildID)
	if !ok {
		return ctx.ReplyEphemeral(t(loc, "command", "noPlayer"))
	}

	position, err := parseSeekPosition(ctx.GetStringOption("position"))
	if err != nil {
		return ctx.ReplyEphemeral(t(loc, "error", "internal"))
	}

	result, ok, err := player.Seek(context.Background(), position.Milliseconds())
	if err != nil {
		return ctx.ReplyEphemeral(translateOrchestratorError(loc, err))
	}
	if !ok {
		return ctx.Reply(t(loc, "player", "nothingPlaying"))
	}

	return ctx.Reply(fmt.Sprintf(t(loc, "command", "seeked"), formatDuration(result.PositionMs)))
}

// loopHandler handles the /loop command
func loopHandler(ctx *discord.CommandContext) error {
	guildID := ctx.Interaction.GuildID
	loc := locale(guildID)

	o := orchestrator.Get()
	if o == nil {
		return ctx.ReplyEphemeral(t(loc, "error", "noNodes"))
	}
	player, ok := o.Player(guildID)
	if !ok {
		return ctx.ReplyEphemeral(t(loc, "command", "noPlayer"))
	}

	mode, ok := parseLoopMode(ctx.GetStringOption("mode"))
	if !ok {
		return ctx.ReplyEphemeral(t(loc, "error", "internal"))
	}

	player.Queue.SetMode(mode)
	o.RefreshPanel(context.Background(), guildID)
	return ctx.Reply(fmt.Sprintf(t(loc, "command", "loopSet"), mode.String()))
}

// stopHandler handles the /stop command
func stopHandler(ctx *discord.CommandContext) error {
	guildID := ctx.Interaction.GuildID
	loc := locale(guildID)

	o := orchestrator.Get()
	if o == nil {
		return ctx.ReplyEphemeral(t(loc, "error", "noNodes"))
	}
	if _, ok := o.Player(guildID); !ok {
		return ctx.ReplyEphemeral(t(loc, "command", "noPlayer"))
	}

	o.Destroy(context.Background(), guildID)
	return ctx.Reply(t(loc, "command", "stopped"))
}

// nowPlayingHandler handles the /nowplaying command. It re-renders the
// panel as a fresh ephemeral message without touching the tracked panel
// message-id — the standing panel is only ever updated by the orchestrator
// itself.
func nowPlayingHandler(ctx *discord.CommandContext) error {
	guildID := ctx.Interaction.GuildID
	loc := locale(guildID)

	o := orchestrator.Get()
	if o == nil {
		return ctx.ReplyEphemeral(t(loc, "error", "noNodes"))
	}

	render, ok := o.BuildPanel(guildID)
	if !ok {
		return ctx.ReplyEphemeral(t(loc, "player", "nothingPlaying"))
	}

	fields := make([]*discordgo.MessageEmbedField, 0, len(render.Fields))
	for name, value := range render.Fields {
		fields = append(fields, &discordgo.MessageEmbedField{Name: name, Value: value, Inline: true})
	}

	embed := &discordgo.MessageEmbed{
		Color:       0x5865F2,
		Title:       render.Title,
		Description: render.Description,
		Fields:      fields,
	}

	return ctx.ReplyEphemeralEmbed(embed)
}

// parseSeekPosition accepts either a "mm:ss"/"hh:mm:ss" clock position or
// anything time.ParseDuration understands ("90s", "1h2m").
func parseSeekPosition(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, ":") {
		return time.ParseDuration(s)
	}

	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid clock position %q", s)
	}

	var hours, minutes, seconds int
	var err error
	switch len(parts) {
	case 2:
		minutes, err = strconv.Atoi(parts[0])
		if err != nil {
			return 0, err
		}
		seconds, err = strconv.Atoi(parts[1])
		if err != nil {
			return 0, err
		}
	case 3:
		hours, err = strconv.Atoi(parts[0])
		if err != nil {
			return 0, err
		}
		minutes, err = strconv.Atoi(parts[1])
		if err != nil {
			return 0, err
		}
		seconds, err = strconv.Atoi(parts[2])
		if err != nil {
			return 0, err
		}
	}

	total := time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second
	return total, nil
}

// parseLoopMode maps a /loop choice value back to its LoopMode.
func parseLoopMode(value string) (orchestrator.LoopMode, bool) {
	switch value {
	case "none":
		return orchestrator.LoopNone, true
	case "noautostart":
		return orchestrator.LoopNoAutostart, true
	case "music":
		return orchestrator.LoopMusic, true
	case "queue":
		return orchestrator.LoopQueue, true
	case "random":
		return orchestrator.LoopRandom, true
	default:
		return 0, false
	}
}

// translateOrchestratorError maps the orchestrator's sentinel errors to a
// translated string, falling back to the generic internal-error message.
func translateOrchestratorError(loc string, err error) string {
	switch err {
	case orchestrator.ErrNoNodes:
		return t(loc, "error", "noNodes")
	case orchestrator.ErrPlayerNotFound:
		return t(loc, "command", "noPlayer")
	default:
		return fmt.Sprintf("%s: %v", t(loc, "error", "internal"), err)
	}
}

// formatDuration formats milliseconds to mm:ss format
func formatDuration(ms int64) string {
	seconds := ms / 1000
	minutes := seconds / 60
	seconds = seconds % 60
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
