package orchestrator

import "context"

// Connection is the voice link descriptor pushed into a node's updatePlayer
// voice block once complete. Completeness requires all three of
// SessionID, Token, and Endpoint to be non-empty.
type Connection struct {
	ChannelID string
	SessionID string
	Token     string
	Endpoint  string
}

// Complete reports whether every field required by the node is populated.
func (c Connection) Complete() bool {
	return c.SessionID != "" && c.Token != "" && c.Endpoint != ""
}

func (c Connection) toVoiceBlock() *VoiceBlock {
	if !c.Complete() {
		return nil
	}
	return &VoiceBlock{SessionID: c.SessionID, Token: c.Token, Endpoint: c.Endpoint}
}

// VoiceManager is the external collaborator that actually joins/leaves
// voice channels on the chat platform and reports the connection triple
// the orchestrator needs. The concrete implementation wraps discordgo in
// internal/discordbot; this engine only depends on the interface so it
// never imports the chat platform client directly.
type VoiceManager interface {
	// CurrentConnection returns the voice connection info the platform has
	// for this guild right now, or ErrVoiceManagerNotConnected if the bot
	// has not joined a channel there.
	CurrentConnection(ctx context.Context, guildID string) (Connection, error)
	// Leave disconnects the bot from the guild's voice channel, if joined.
	Leave(ctx context.Context, guildID string)
}

// ChannelInfo is the minimal channel shape the orchestrator needs to
// decide whether a voice channel is effectively empty.
type ChannelInfo struct {
	IsVoice       bool
	NonBotMembers int
}

// ChannelCache is the external collaborator giving read access to channel
// state without a live gateway round-trip.
type ChannelCache interface {
	Channel(ctx context.Context, channelID string) (ChannelInfo, error)
}

// ChatClient is the external collaborator used to render the now-playing
// panel and surface error messages to users.
type ChatClient interface {
	// UpsertPanel creates the now-playing message if messageID is empty,
	// or edits it in place otherwise, returning the (possibly new) id.
	UpsertPanel(ctx context.Context, channelID, messageID string, embed PanelRender) (string, error)
	DeleteMessage(ctx context.Context, channelID, messageID string)
	ReportError(ctx context.Context, channelID string, err error)
}

// PanelRender is the chat-platform-agnostic content of a now-playing
// message; internal/discordbot turns it into a *discordgo.MessageEmbed.
type PanelRender struct {
	Title       string
	Description string
	Fields      map[string]string
}

// Translator resolves an i18n lookup for a given guild locale; the
// orchestrator calls it only when rendering panels, never on the hot path
// of play/skip/seek.
type Translator interface {
	T(locale, category, key string) string
}
