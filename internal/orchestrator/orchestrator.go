package orchestrator

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/nashiradeer/hydrogen-go/pkg/eventbus"
	"github.com/nashiradeer/hydrogen-go/pkg/logger"
)

// Config bundles the orchestrator-wide tunables that are not per-node.
type Config struct {
	// EmptyChatTimeout is how long a voice channel may sit with at most
	// one non-bot member before the player is destroyed.
	EmptyChatTimeout time.Duration
	// NodeConnectTimeout bounds how long AddNode waits for a node's ready
	// frame before failing.
	NodeConnectTimeout time.Duration
	// FatalExit is called when the node pool empties; overridable in
	// tests so they don't actually exit the process.
	FatalExit func()
}

func (c Config) withDefaults() Config {
	if c.EmptyChatTimeout <= 0 {
		c.EmptyChatTimeout = 30 * time.Second
	}
	if c.NodeConnectTimeout <= 0 {
		c.NodeConnectTimeout = 5 * time.Second
	}
	if c.FatalExit == nil {
		c.FatalExit = func() { os.Exit(1) }
	}
	return c
}

// Orchestrator is the top-level component: it owns the NodePool, the
// guild->Player registry, and the idle-destroy scheduler, and it
// implements NodeHandler so NodeClients can call back into it without
// either side importing the other's concrete type.
type Orchestrator struct {
	cfg   Config
	pool  *NodePool
	voice VoiceManager
	cache ChannelCache
	chat  ChatClient
	tr    Translator

	mu       sync.RWMutex
	registry map[string]*Player

	idle *IdleDestroyer
}

// New builds an Orchestrator. The external collaborators are required:
// without them the orchestrator cannot join voice channels, inspect
// channel membership, or render its now-playing panel.
func New(cfg Config, voice VoiceManager, cache ChannelCache, chat ChatClient, tr Translator) *Orchestrator {
	o := &Orchestrator{
		cfg:      cfg.withDefaults(),
		pool:     NewNodePool(),
		voice:    voice,
		cache:    cache,
		chat:     chat,
		tr:       tr,
		registry: make(map[string]*Player),
	}
	o.idle = NewIdleDestroyer(func(guildID string) { o.Destroy(context.Background(), guildID) })
	return o
}

var instance *Orchestrator

// Set registers the process-wide Orchestrator instance so ambient packages
// (statusweb) can report on it without the command layer threading it
// through every call.
func Set(o *Orchestrator) { instance = o }

// Get returns the process-wide Orchestrator instance, or nil if Set was
// never called.
func Get() *Orchestrator { return instance }

// PlayerCount returns the number of guilds with a live player.
func (o *Orchestrator) PlayerCount() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.registry)
}

// NodeCount returns the number of nodes currently in the pool.
func (o *Orchestrator) NodeCount() int {
	return o.pool.Len()
}

// GuildStatus is a status snapshot of a single guild's player, for the
// statusweb surface.
type GuildStatus struct {
	GuildID      string
	Paused       bool
	QueueLength  int
	CurrentTrack string
}

// GuildStatus looks up a guild's player and summarizes its state. The
// second return value is false if the guild has no active player.
func (o *Orchestrator) GuildStatus(guildID string) (GuildStatus, bool) {
	p, ok := o.Player(guildID)
	if !ok {
		return GuildStatus{}, false
	}

	status := GuildStatus{
		GuildID:     guildID,
		Paused:      p.Paused(),
		QueueLength: p.Queue.Len(),
	}
	if t, ok := p.Queue.Current(); ok {
		status.CurrentTrack = t.Title
	}
	return status, true
}

// AddNode connects a node and, on success, adds it to the pool. The
// returned error is ErrNotReady if the node's ready handshake times out.
func (o *Orchestrator) AddNode(ctx context.Context, host, password string, tls bool, userID string) (*NodeClient, error) {
	node := NewNodeClient(host, password, tls, userID, o.cfg.NodeConnectTimeout, o)
	if err := node.Connect(ctx); err != nil {
		return nil, err
	}
	o.pool.Add(node)
	return node, nil
}

// Player looks up the registered player for a guild, if any.
func (o *Orchestrator) Player(guildID string) (*Player, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	p, ok := o.registry[guildID]
	return p, ok
}

// Init creates a Player for a guild. The guild must already be joined to a
// voice channel by the external voice manager. If a Player already exists,
// it is returned unchanged.
func (o *Orchestrator) Init(ctx context.Context, guildID, locale, textChannelID string) (*Player, error) {
	if p, ok := o.Player(guildID); ok {
		return p, nil
	}

	conn, err := o.voice.CurrentConnection(ctx, guildID)
	if err != nil {
		return nil, err
	}

	node, err := o.pool.Acquire()
	if err != nil {
		return nil, err
	}

	player := NewPlayer(guildID, locale, textChannelID, node, conn, o.voice)

	o.mu.Lock()
	if existing, ok := o.registry[guildID]; ok {
		o.mu.Unlock()
		return existing, nil
	}
	o.registry[guildID] = player
	o.mu.Unlock()

	o.refreshPanel(ctx, player)
	return player, nil
}

// PlayOrInit initializes a player for the guild if needed, then plays.
func (o *Orchestrator) PlayOrInit(ctx context.Context, guildID, locale, textChannelID, query, requesterID string) (PlayResult, error) {
	player, err := o.Init(ctx, guildID, locale, textChannelID)
	if err != nil {
		return PlayResult{}, err
	}

	result, err := player.Play(ctx, query, requesterID)
	if err != nil {
		return PlayResult{}, err
	}

	o.refreshPanel(ctx, player)
	return result, nil
}

// Destroy removes the guild's player from the registry, tears it down,
// deletes its panel message, and cancels any pending idle timer.
func (o *Orchestrator) Destroy(ctx context.Context, guildID string) {
	o.mu.Lock()
	player, ok := o.registry[guildID]
	if ok {
		delete(o.registry, guildID)
	}
	o.mu.Unlock()

	if !ok {
		return
	}

	player.Destroy(ctx)

	if msgID := player.PanelMessageID(); msgID != "" {
		o.chat.DeleteMessage(ctx, player.TextChannelID, msgID)
	}
	o.idle.Cancel(guildID)

	if bus := eventbus.Get(); bus != nil {
		bus.PublishPlayerDestroyed(eventbus.PlayerDestroyed{GuildID: guildID, Reason: "destroyed"})
	}
}

// HandleVoiceState reconciles a platform VoiceStateUpdate event with the
// guild's player, arming or cancelling the idle-destroy timer based on
// channel occupancy.
func (o *Orchestrator) HandleVoiceState(ctx context.Context, guildID, botUserID string, isBotUser, hadPrevious bool, newChannelID, sessionID, token string) {
	player, ok := o.Player(guildID)
	if !ok {
		return
	}

	if isBotUser && hadPrevious {
		if newChannelID != "" {
			player.setConnection(func(c *Connection) {
				c.ChannelID = newChannelID
				c.SessionID = sessionID
				if token != "" {
					c.Token = token
				}
			})
		} else if player.Connection().ChannelID != "" {
			o.Destroy(ctx, guildID)
			return
		}
	}

	channelID := player.Connection().ChannelID
	if channelID == "" {
		return
	}

	info, err := o.cache.Channel(ctx, channelID)
	if err != nil {
		return
	}

	if info.IsVoice && info.NonBotMembers <= 1 {
		o.idle.Arm(guildID, o.cfg.EmptyChatTimeout)
		o.renderWillDisconnect(ctx, player)
		return
	}

	o.idle.Cancel(guildID)
	o.refreshPanel(ctx, player)
}

// HandleVoiceServer reconciles a platform VoiceServerUpdate event,
// updating the connection and pushing it to the node once complete.
func (o *Orchestrator) HandleVoiceServer(ctx context.Context, guildID, token, endpoint string) {
	player, ok := o.Player(guildID)
	if !ok {
		return
	}

	player.setConnection(func(c *Connection) {
		c.Token = token
		if endpoint != "" {
			c.Endpoint = endpoint
		}
	})

	player.UpdateConnection(ctx)
}

// --- NodeHandler implementation ---

// OnReady logs the node handshake result.
func (o *Orchestrator) OnReady(node *NodeClient, resumed bool) {
	logger.Info(fmt.Sprintf("lavalink node %s ready (resumed: %t)", node.Host, resumed), "ORCHESTRATOR")
}

// OnDisconnect removes the node from the pool and, if the pool is now
// empty, exits the process. Otherwise it destroys every player whose node
// equals the one that disconnected before returning control to the caller.
func (o *Orchestrator) OnDisconnect(node *NodeClient) {
	o.pool.Remove(node)

	if o.pool.Len() == 0 {
		o.cfg.FatalExit()
		return
	}

	ctx := context.Background()
	o.mu.RLock()
	affected := make([]string, 0)
	for guildID, p := range o.registry {
		if p.Node().Equal(node) {
			affected = append(affected, guildID)
		}
	}
	o.mu.RUnlock()

	for _, guildID := range affected {
		o.Destroy(ctx, guildID)
	}
}

// OnTrackStart refreshes the now-playing panel for the guild and publishes a
// track-start telemetry event.
func (o *Orchestrator) OnTrackStart(node *NodeClient, guildID, encodedTrack string) {
	_ = node
	_ = encodedTrack
	player, ok := o.Player(guildID)
	if !ok {
		return
	}
	o.refreshPanel(context.Background(), player)
	if track, ok := player.Queue.Current(); ok {
		if bus := eventbus.Get(); bus != nil {
			bus.PublishTrackStart(eventbus.TrackStart{GuildID: guildID, Title: track.Title, Author: track.Author})
		}
	}
}

// OnTrackEnd calls Player.Next only for a FINISHED reason, per the
// documented policy that the others are no-ops at this layer.
func (o *Orchestrator) OnTrackEnd(node *NodeClient, guildID, encodedTrack, reason string) {
	_ = node
	_ = encodedTrack
	if reason != "FINISHED" {
		return
	}

	player, ok := o.Player(guildID)
	if !ok {
		return
	}

	ctx := context.Background()
	player.Next(ctx)
	o.refreshPanel(ctx, player)
	if bus := eventbus.Get(); bus != nil {
		bus.PublishTrackEnd(eventbus.TrackEnd{GuildID: guildID, Reason: reason})
	}
}

// OnTrackException, OnTrackStuck, and OnWebSocketClosed are parseable
// no-ops: the wire format is understood but nothing downstream consumes
// these events yet.
func (o *Orchestrator) OnTrackException(node *NodeClient, guildID string) {}
func (o *Orchestrator) OnTrackStuck(node *NodeClient, guildID string)     {}
func (o *Orchestrator) OnWebSocketClosed(node *NodeClient, guildID string) {}

// --- panel rendering ---

func (o *Orchestrator) refreshPanel(ctx context.Context, player *Player) {
	render := o.buildPanel(player, "")
	id, err := o.chat.UpsertPanel(ctx, player.TextChannelID, player.PanelMessageID(), render)
	if err != nil {
		o.chat.ReportError(ctx, player.TextChannelID, err)
		return
	}
	player.SetPanelMessageID(id)
}

func (o *Orchestrator) renderWillDisconnect(ctx context.Context, player *Player) {
	note := fmt.Sprintf("will disconnect in %d seconds", int(o.cfg.EmptyChatTimeout.Seconds()))
	render := o.buildPanel(player, note)
	id, err := o.chat.UpsertPanel(ctx, player.TextChannelID, player.PanelMessageID(), render)
	if err != nil {
		return
	}
	player.SetPanelMessageID(id)
}

func (o *Orchestrator) buildPanel(player *Player, note string) PanelRender {
	track, hasTrack := player.Queue.Current()
	fields := map[string]string{
		"loop":   player.Queue.Mode().String(),
		"paused": fmt.Sprintf("%t", player.Paused()),
	}
	if note != "" {
		fields["notice"] = note
	}

	title := o.tr.T(player.GuildLocale, "player", "nothingPlaying")
	description := ""
	if hasTrack {
		title = track.Title
		description = track.Author
	}

	return PanelRender{Title: title, Description: description, Fields: fields}
}

// RefreshPanel re-renders and upserts a guild's now-playing panel. Exported
// for command handlers that change player state outside the node-event
// callbacks above (e.g. /loop).
func (o *Orchestrator) RefreshPanel(ctx context.Context, guildID string) {
	if player, ok := o.Player(guildID); ok {
		o.refreshPanel(ctx, player)
	}
}

// BuildPanel renders a guild's current panel state without upserting it,
// for commands that want a fresh standalone render (e.g. /nowplaying).
func (o *Orchestrator) BuildPanel(guildID string) (PanelRender, bool) {
	player, ok := o.Player(guildID)
	if !ok {
		return PanelRender{}, false
	}
	return o.buildPanel(player, ""), true
}
