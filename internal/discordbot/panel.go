package discordbot

import (
	"context"
	"fmt"

	"github.com/nashiradeer/hydrogen-go/internal/orchestrator"
	"github.com/nashiradeer/hydrogen-go/pkg/discord"
	"github.com/nashiradeer/hydrogen-go/pkg/errpanel"
	"github.com/nashiradeer/hydrogen-go/pkg/logger"

	"github.com/bwmarrin/discordgo"
)

const panelColor = 0x5865F2

// ChatClient renders and maintains the now-playing panel message, and
// surfaces command errors as ephemeral-style channel messages.
type ChatClient struct {
	client *discord.ExtendedClient
}

// NewChatClient wraps client as an orchestrator.ChatClient.
func NewChatClient(client *discord.ExtendedClient) *ChatClient {
	return &ChatClient{client: client}
}

// UpsertPanel creates the now-playing message if messageID is empty, or
// edits it in place otherwise.
func (c *ChatClient) UpsertPanel(ctx context.Context, channelID, messageID string, render orchestrator.PanelRender) (string, error) {
	embed := renderEmbed(render)

	if messageID == "" {
		msg, err := c.client.Session.ChannelMessageSendEmbed(channelID, embed)
		if err != nil {
			return "", err
		}
		return msg.ID, nil
	}

	_, err := c.client.Session.ChannelMessageEditEmbed(channelID, messageID, embed)
	if err != nil {
		// The old panel message may have been deleted by a user; fall back
		// to creating a new one rather than surfacing a broken player.
		msg, sendErr := c.client.Session.ChannelMessageSendEmbed(channelID, embed)
		if sendErr != nil {
			return "", err
		}
		return msg.ID, nil
	}
	return messageID, nil
}

// DeleteMessage removes the now-playing panel when a player is destroyed.
func (c *ChatClient) DeleteMessage(ctx context.Context, channelID, messageID string) {
	if messageID == "" {
		return
	}
	if err := c.client.Session.ChannelMessageDelete(channelID, messageID); err != nil {
		logger.Warn(fmt.Sprintf("discordbot: failed to delete panel message %s: %v", messageID, err), "PANEL")
	}
}

// ReportError posts a one-off error message to the channel and counts it
// against errpanel's error-rate threshold; the error itself is not sent to
// the webhook.
func (c *ChatClient) ReportError(ctx context.Context, channelID string, err error) {
	if panel := errpanel.Get(); panel != nil {
		panel.Increment()
	}
	if _, sendErr := c.client.Session.ChannelMessageSend(channelID, fmt.Sprintf("⚠️ %s", err.Error())); sendErr != nil {
		logger.Warn(fmt.Sprintf("discordbot: failed to report error to channel %s: %v", channelID, sendErr), "PANEL")
	}
}

// renderEmbed turns a chat-platform-agnostic PanelRender into a concrete
// discordgo embed.
func renderEmbed(render orchestrator.PanelRender) *discordgo.MessageEmbed {
	fields := make([]*discordgo.MessageEmbedField, 0, len(render.Fields))
	for name, value := range render.Fields {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   name,
			Value:  value,
			Inline: true,
		})
	}

	return &discordgo.MessageEmbed{
		Title:       render.Title,
		Description: render.Description,
		Color:       panelColor,
		Fields:      fields,
	}
}
