// Package discordbot is the concrete discordgo binding for the playback
// engine: it satisfies internal/orchestrator's VoiceManager, ChannelCache
// and ChatClient collaborator interfaces, and renders the now-playing
// panel the orchestrator asks it to upsert.
package discordbot

import (
	"context"
	"sync"

	"github.com/nashiradeer/hydrogen-go/internal/orchestrator"
	"github.com/nashiradeer/hydrogen-go/pkg/discord"

	"github.com/bwmarrin/discordgo"
)

// VoiceManager tracks the voice connection (channel, session, token,
// endpoint) discordgo reports over the gateway for each guild. Discord
// sends the session half (VOICE_STATE_UPDATE) and the server half
// (VOICE_SERVER_UPDATE) as two independent events in no guaranteed order;
// this cache merges both into one Connection per guild, and forwards
// updates into an already-initialized Orchestrator player.
type VoiceManager struct {
	client *discord.ExtendedClient

	mu    sync.Mutex
	conns map[string]orchestrator.Connection

	// orch is resolved lazily via orchestrator.Get() so VoiceManager can be
	// constructed before the Orchestrator that depends on it.
}

// NewVoiceManager wraps client as an orchestrator.VoiceManager and
// registers the gateway handlers that keep its connection cache current.
func NewVoiceManager(client *discord.ExtendedClient) *VoiceManager {
	v := &VoiceManager{
		client: client,
		conns:  make(map[string]orchestrator.Connection),
	}
	client.Session.AddHandler(v.onVoiceStateUpdate)
	client.Session.AddHandler(v.onVoiceServerUpdate)
	return v
}

func (v *VoiceManager) onVoiceStateUpdate(s *discordgo.Session, e *discordgo.VoiceStateUpdate) {
	isBot := s.State.User != nil && e.UserID == s.State.User.ID

	hadPrevious := false
	if isBot {
		v.mu.Lock()
		conn := v.conns[e.GuildID]
		hadPrevious = conn.ChannelID != ""
		conn.ChannelID = e.ChannelID
		conn.SessionID = e.SessionID
		if e.ChannelID == "" {
			delete(v.conns, e.GuildID)
		} else {
			v.conns[e.GuildID] = conn
		}
		v.mu.Unlock()
	}

	if o := orchestrator.Get(); o != nil {
		o.HandleVoiceState(context.Background(), e.GuildID, e.UserID, isBot, hadPrevious, e.ChannelID, e.SessionID, "")
	}
}

func (v *VoiceManager) onVoiceServerUpdate(s *discordgo.Session, e *discordgo.VoiceServerUpdate) {
	v.mu.Lock()
	conn := v.conns[e.GuildID]
	conn.Token = e.Token
	conn.Endpoint = e.Endpoint
	v.conns[e.GuildID] = conn
	v.mu.Unlock()

	if o := orchestrator.Get(); o != nil {
		o.HandleVoiceServer(context.Background(), e.GuildID, e.Token, e.Endpoint)
	}
}

// CurrentConnection returns the cached voice connection triple for guildID,
// or ErrVoiceManagerNotConnected if nothing has been cached yet. This is
// consulted only by Orchestrator.Init, before a player — and therefore the
// HandleVoiceState/HandleVoiceServer forwarding path above — exists.
func (v *VoiceManager) CurrentConnection(ctx context.Context, guildID string) (orchestrator.Connection, error) {
	v.mu.Lock()
	conn, ok := v.conns[guildID]
	v.mu.Unlock()

	if !ok || !conn.Complete() {
		return orchestrator.Connection{}, orchestrator.ErrVoiceManagerNotConnected
	}
	return conn, nil
}

// Leave disconnects from the guild's voice channel, if joined.
func (v *VoiceManager) Leave(ctx context.Context, guildID string) {
	if vc, ok := v.client.Session.VoiceConnections[guildID]; ok && vc != nil {
		_ = vc.Disconnect()
	}
	v.mu.Lock()
	delete(v.conns, guildID)
	v.mu.Unlock()
}

// JoinChannel asks discordgo to join a voice channel manually — the bot
// negotiates the voice handshake itself instead of using discordgo's
// built-in ChannelVoiceJoin, so the orchestrator's NodeClient (not
// discordgo) drives playback.
func JoinChannel(client *discord.ExtendedClient, guildID, channelID string, mute, deaf bool) error {
	return client.Session.ChannelVoiceJoinManual(guildID, channelID, mute, deaf)
}

// ChannelCache reports channel membership from discordgo's gateway state
// cache, avoiding a live API call per lookup.
type ChannelCache struct {
	client *discord.ExtendedClient
}

// NewChannelCache wraps client as an orchestrator.ChannelCache.
func NewChannelCache(client *discord.ExtendedClient) *ChannelCache {
	return &ChannelCache{client: client}
}

// Channel reports whether channelID is a voice channel and how many
// non-bot members currently occupy it, per guild voice state.
func (c *ChannelCache) Channel(ctx context.Context, channelID string) (orchestrator.ChannelInfo, error) {
	channel, err := c.client.Session.State.Channel(channelID)
	if err != nil {
		return orchestrator.ChannelInfo{}, err
	}

	isVoice := channel.Type == discordgo.ChannelTypeGuildVoice || channel.Type == discordgo.ChannelTypeGuildStageVoice
	if !isVoice {
		return orchestrator.ChannelInfo{IsVoice: false}, nil
	}

	guild, err := c.client.Session.State.Guild(channel.GuildID)
	if err != nil {
		return orchestrator.ChannelInfo{IsVoice: true}, nil
	}

	nonBot := 0
	for _, vs := range guild.VoiceStates {
		if vs.ChannelID != channelID {
			continue
		}
		member, err := c.client.Session.State.Member(channel.GuildID, vs.UserID)
		if err == nil && member.User != nil && member.User.Bot {
			continue
		}
		nonBot++
	}

	return orchestrator.ChannelInfo{IsVoice: true, NonBotMembers: nonBot}, nil
}
