// Package events provides event handlers for member events
package events

import (
	"fmt"
	"time"

	"github.com/nashiradeer/hydrogen-go/pkg/discord"
	"github.com/nashiradeer/hydrogen-go/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// RegisterMemberEvents registers all member-related event handlers
func RegisterMemberEvents(client *discord.ExtendedClient) {
	client.Session.AddHandler(onGuildMemberAdd)
	client.Session.AddHandler(onGuildMemberRemove)
	client.Session.AddHandler(onGuildMemberUpdate)
}

// onGuildMemberAdd is called when a new member joins the server
func onGuildMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	logger.Debug(fmt.Sprintf("Member joined: %s#%s in guild %s",
		m.User.Username, m.User.Discriminator, m.GuildID), "Member")

	guild, err := s.Guild(m.GuildID)
	if err != nil {
		logger.Error(fmt.Sprintf("Error fetching guild: %v", err), "Member")
		return
	}

	if guild.SystemChannelID == "" {
		return
	}

	welcomeEmbed := &discordgo.MessageEmbed{
		Title:       "Welcome!",
		Description: fmt.Sprintf("Welcome <@%s>. We're now **%d** members.", m.User.ID, guild.MemberCount),
		Color:       0x00ff00,
		Thumbnail: &discordgo.MessageEmbedThumbnail{
			URL: m.User.AvatarURL("128"),
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text:    guild.Name,
			IconURL: guild.IconURL("64"),
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}

	if _, err := s.ChannelMessageSendEmbed(guild.SystemChannelID, welcomeEmbed); err != nil {
		logger.Error(fmt.Sprintf("Error sending welcome message: %v", err), "Member")
	}
}

// onGuildMemberRemove is called when a member leaves the server
func onGuildMemberRemove(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
	logger.Debug(fmt.Sprintf("Member left: %s#%s from guild %s",
		m.User.Username, m.User.Discriminator, m.GuildID), "Member")

	guild, err := s.Guild(m.GuildID)
	if err != nil || guild.SystemChannelID == "" {
		return
	}

	farewellEmbed := &discordgo.MessageEmbed{
		Description: fmt.Sprintf("**%s#%s** left the server. We're now **%d** members.",
			m.User.Username, m.User.Discriminator, guild.MemberCount),
		Color: 0xe74c3c,
		Thumbnail: &discordgo.MessageEmbedThumbnail{
			URL: m.User.AvatarURL("64"),
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}

	if _, err := s.ChannelMessageSendEmbed(guild.SystemChannelID, farewellEmbed); err != nil {
		logger.Error(fmt.Sprintf("Error sending farewell message: %v", err), "Member")
	}
}

// onGuildMemberUpdate logs nickname and role changes for operators.
func onGuildMemberUpdate(s *discordgo.Session, m *discordgo.GuildMemberUpdate) {
	if m.BeforeUpdate == nil {
		return
	}

	if m.BeforeUpdate.Nick != m.Nick {
		logger.Debug(fmt.Sprintf("%s changed nickname: '%s' -> '%s'",
			m.User.Username, m.BeforeUpdate.Nick, m.Nick), "Member")
	}

	if len(m.BeforeUpdate.Roles) != len(m.Roles) {
		logger.Debug(fmt.Sprintf("Roles updated for %s", m.User.Username), "Member")
	}
}
