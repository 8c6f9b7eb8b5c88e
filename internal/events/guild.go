// Package events provides event handlers for guild (server) events
package events

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/nashiradeer/hydrogen-go/pkg/config"
	"github.com/nashiradeer/hydrogen-go/pkg/discord"
	"github.com/nashiradeer/hydrogen-go/pkg/errpanel"
	"github.com/nashiradeer/hydrogen-go/pkg/logger"

	"github.com/bwmarrin/discordgo"
	"github.com/goccy/go-json"
)

// RegisterGuildEvents registers all guild-related event handlers
func RegisterGuildEvents(client *discord.ExtendedClient) {
	client.Session.AddHandler(onGuildCreate)
	client.Session.AddHandler(onGuildDelete)
}

// onGuildCreate is called when the bot joins a server
func onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	joined := g.JoinedAt
	if joined.Compare(time.Now().Add(-10*time.Second)) < 0 {
		return
	}

	logger.Info(fmt.Sprintf("Joined guild: %s (ID: %s)", g.Name, g.ID), "Guild")
	logger.Debug(fmt.Sprintf("  members: %d | channels: %d", g.MemberCount, len(g.Channels)), "Guild")

	go func() {
		defer errpanel.RecoverMiddleware()()

		if g.SystemChannelID != "" {
			welcomeEmbed := &discordgo.MessageEmbed{
				Title:       "Thanks for adding me!",
				Description: "Hi, I'm **hydrogen**. Use `/nowplaying` or `/play` to get started.",
				Color:       0x00ff00,
				Fields: []*discordgo.MessageEmbedField{
					{Name: "Music", Value: "Play audio with `/play`", Inline: true},
					{Name: "Status", Value: "Check `/nowplaying` for what's active", Inline: true},
				},
				Timestamp: time.Now().Format(time.RFC3339),
			}

			if _, err := s.ChannelMessageSendEmbed(g.SystemChannelID, welcomeEmbed); err != nil {
				logger.Error(fmt.Sprintf("Error sending welcome message: %v", err), "Guild")
			}
		}

		notifyGuildsWebhook(g)
	}()
}

// notifyGuildsWebhook posts a join notification to the operator-configured
// guilds webhook, if one is set.
func notifyGuildsWebhook(g *discordgo.GuildCreate) {
	webhook := config.Get().GuildsWebhook
	if webhook == "" {
		return
	}

	createdAt, err := discordgo.SnowflakeTimestamp(g.ID)
	if err != nil {
		log.Println("Error resolving guild creation date:", err)
		return
	}

	embed := map[string]interface{}{
		"title":       "New guild joined",
		"description": "The bot has been added to a new server.",
		"color":       0x00ff00,
		"fields": []map[string]string{
			{"name": "Guild", "value": fmt.Sprintf("%s (%s)", g.Name, g.ID), "inline": "true"},
			{"name": "Members", "value": fmt.Sprintf("%d", g.MemberCount), "inline": "true"},
			{"name": "Channels", "value": fmt.Sprintf("%d", len(g.Channels)), "inline": "true"},
			{"name": "Created", "value": createdAt.Format(time.RFC850), "inline": "true"},
		},
		"timestamp": time.Now().Format(time.RFC3339),
	}

	payload := map[string]interface{}{
		"embeds": []interface{}{embed},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return
	}

	req, err := http.NewRequest("POST", webhook, bytes.NewBuffer(jsonData))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return
	}
	defer resp.Body.Close()
}

// onGuildDelete is called when the bot is removed from a server
func onGuildDelete(s *discordgo.Session, g *discordgo.GuildDelete) {
	logger.Info(fmt.Sprintf("Removed from guild ID: %s", g.ID), "Guild")
}
