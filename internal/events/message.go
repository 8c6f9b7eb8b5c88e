// Package events provides event handlers for message events
package events

import (
	"fmt"
	"strings"

	"github.com/nashiradeer/hydrogen-go/pkg/discord"
	"github.com/nashiradeer/hydrogen-go/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// RegisterMessageEvents registers all message-related event handlers
func RegisterMessageEvents(client *discord.ExtendedClient) {
	client.Session.AddHandler(onMessageCreate)
	client.Session.AddHandler(onMessageUpdate)
	client.Session.AddHandler(onMessageDelete)
}

// onMessageCreate replies with a short usage hint when the bot is mentioned.
func onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.Bot {
		return
	}

	for _, mention := range m.Mentions {
		if mention.ID != s.State.User.ID {
			continue
		}

		embed := &discordgo.MessageEmbed{
			Title:       "Hi there",
			Description: "Use slash commands to interact with me. Try `/utils help` to see what's available.",
			Color:       0x3498db,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Music", Value: "`/play` - play or queue a track", Inline: true},
				{Name: "Status", Value: "`/nowplaying` - what's active", Inline: true},
				{Name: "Help", Value: "`/utils help` - full command list", Inline: true},
			},
		}
		if _, err := s.ChannelMessageSendEmbed(m.ChannelID, embed); err != nil {
			logger.Error(fmt.Sprintf("Error sending mention reply: %v", err), "Message")
		}
		return
	}

	if strings.Contains(strings.ToLower(m.Content), "🎵") {
		if err := s.MessageReactionAdd(m.ChannelID, m.ID, "🎵"); err != nil {
			logger.Debug(fmt.Sprintf("Error adding reaction: %v", err), "Message")
		}
	}
}

// onMessageUpdate is called when a message is edited
func onMessageUpdate(s *discordgo.Session, m *discordgo.MessageUpdate) {
	if m.Author != nil && !m.Author.Bot {
		logger.Debug(fmt.Sprintf("Message edited by %s in channel %s",
			m.Author.Username, m.ChannelID), "Message")
	}
}

// onMessageDelete is called when a message is deleted
func onMessageDelete(s *discordgo.Session, m *discordgo.MessageDelete) {
	logger.Debug(fmt.Sprintf("Message deleted: ID %s in channel %s",
		m.ID, m.ChannelID), "Message")
}
