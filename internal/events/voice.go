// Package events provides event handlers for voice events
package events

import (
	"fmt"

	"github.com/nashiradeer/hydrogen-go/pkg/discord"
	"github.com/nashiradeer/hydrogen-go/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// RegisterVoiceEvents registers all voice-related event handlers
func RegisterVoiceEvents(client *discord.ExtendedClient) {
	client.Session.AddHandler(onVoiceStateUpdate)
}

// onVoiceStateUpdate logs voice channel membership changes for operators.
// The connection triple the orchestrator actually needs is handled
// separately by internal/discordbot.VoiceManager; this handler never
// touches playback state.
func onVoiceStateUpdate(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	if v.ChannelID != "" && (v.BeforeUpdate == nil || v.BeforeUpdate.ChannelID == "") {
		channel, err := s.Channel(v.ChannelID)
		if err == nil {
			user, _ := s.User(v.UserID)
			if user != nil {
				logger.Debug(fmt.Sprintf("%s joined %s", user.Username, channel.Name), "Voice")
			}
		}
		return
	}

	if v.ChannelID == "" && v.BeforeUpdate != nil && v.BeforeUpdate.ChannelID != "" {
		user, _ := s.User(v.UserID)
		if user != nil {
			logger.Debug(fmt.Sprintf("%s left the voice channel", user.Username), "Voice")
		}
		return
	}

	if v.ChannelID != "" && v.BeforeUpdate != nil &&
		v.BeforeUpdate.ChannelID != "" && v.ChannelID != v.BeforeUpdate.ChannelID {
		oldChannel, _ := s.Channel(v.BeforeUpdate.ChannelID)
		newChannel, _ := s.Channel(v.ChannelID)
		user, _ := s.User(v.UserID)

		if oldChannel != nil && newChannel != nil && user != nil {
			logger.Debug(fmt.Sprintf("%s: %s -> %s",
				user.Username, oldChannel.Name, newChannel.Name), "Voice")
		}
		return
	}

	if v.BeforeUpdate != nil {
		user, _ := s.User(v.UserID)
		if user != nil {
			if v.Mute && !v.BeforeUpdate.Mute {
				logger.Debug(fmt.Sprintf("%s was muted", user.Username), "Voice")
			} else if !v.Mute && v.BeforeUpdate.Mute {
				logger.Debug(fmt.Sprintf("%s was unmuted", user.Username), "Voice")
			}

			if v.Deaf && !v.BeforeUpdate.Deaf {
				logger.Debug(fmt.Sprintf("%s was deafened", user.Username), "Voice")
			} else if !v.Deaf && v.BeforeUpdate.Deaf {
				logger.Debug(fmt.Sprintf("%s was undeafened", user.Username), "Voice")
			}
		}
	}
}
