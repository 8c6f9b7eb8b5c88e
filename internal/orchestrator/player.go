package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

// searchPrefix is prepended to a query that returned zero tracks on the
// first load attempt.
const searchPrefix = "ytsearch:"

// defaultQueueMaxSize bounds a fresh Queue when the Orchestrator does not
// override it.
const defaultQueueMaxSize = 1000

// Player is one per guild. It owns a Queue, a reference to the NodeClient
// serving it, the voice Connection, and the bits of UI state (now-playing
// message id) the Orchestrator needs to keep a chat panel in sync.
type Player struct {
	GuildID       string
	GuildLocale   string
	TextChannelID string

	Queue *Queue

	node *NodeClient

	mu         sync.RWMutex
	conn       Connection
	paused     bool
	panelMsgID string
	destroyed  int32 // atomic bool, one-way true

	voice VoiceManager
}

// NewPlayer constructs a Player around an already-acquired node and an
// initial Connection obtained from the voice manager.
func NewPlayer(guildID, locale, textChannelID string, node *NodeClient, conn Connection, voice VoiceManager) *Player {
	return &Player{
		GuildID:       guildID,
		GuildLocale:   locale,
		TextChannelID: textChannelID,
		Queue:         NewQueue(defaultQueueMaxSize),
		node:          node,
		conn:          conn,
		voice:         voice,
	}
}

// Destroyed reports whether Destroy has already run.
func (p *Player) Destroyed() bool {
	return atomic.LoadInt32(&p.destroyed) != 0
}

func (p *Player) checkAlive() error {
	if p.Destroyed() {
		return ErrPlayerNotFound
	}
	return nil
}

// Node returns the NodeClient backing this player.
func (p *Player) Node() *NodeClient {
	return p.node
}

// Connection returns a snapshot of the current voice connection.
func (p *Player) Connection() Connection {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.conn
}

// Paused reports the local paused flag.
func (p *Player) Paused() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.paused
}

// PanelMessageID returns the tracked now-playing message id, if any.
func (p *Player) PanelMessageID() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.panelMsgID
}

// SetPanelMessageID updates the tracked now-playing message id.
func (p *Player) SetPanelMessageID(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.panelMsgID = id
}

// Play loads a query, appends the resulting tracks, and starts playback if
// nothing is currently playing on the node.
func (p *Player) Play(ctx context.Context, query, requesterID string) (PlayResult, error) {
	if err := p.checkAlive(); err != nil {
		return PlayResult{}, err
	}

	resp, err := p.node.TrackLoad(ctx, trimmedQuery(query))
	if err != nil {
		return PlayResult{}, err
	}

	if len(resp.Tracks) == 0 && resp.LoadType != loadTypePlaylist {
		resp, err = p.node.TrackLoad(ctx, searchPrefix+query)
		if err != nil {
			return PlayResult{}, err
		}
	}

	var toAppend []Track
	switch resp.LoadType {
	case loadTypeSearch:
		if len(resp.Tracks) > 0 {
			toAppend = []Track{resp.Tracks[0].toTrack(requesterID)}
		}
	case loadTypePlaylist, loadTypeTrack:
		toAppend = make([]Track, 0, len(resp.Tracks))
		for _, t := range resp.Tracks {
			toAppend = append(toAppend, t.toTrack(requesterID))
		}
	}

	if len(toAppend) == 0 {
		return PlayResult{}, &InvalidResponseError{Cause: fmt.Errorf("no tracks matched %q", query)}
	}

	addResult := p.Queue.Add(toAppend)
	if len(addResult.Added) == 0 {
		// The load succeeded but the queue was already full; report the
		// truncation instead of misreporting it as a decode failure.
		return PlayResult{Truncated: true}, nil
	}

	state, getErr := p.node.GetPlayer(ctx, p.GuildID)
	absent := false
	if getErr != nil {
		if restErr, ok := getErr.(*RestError); ok && restErr.Status == 404 {
			absent = true
		} else {
			return PlayResult{}, getErr
		}
	} else if state.Track == nil {
		absent = true
	}

	result := PlayResult{
		Track:     addResult.Added[0],
		Count:     len(addResult.Added),
		Truncated: addResult.Truncated,
	}

	if absent {
		selected := resp.PlaylistInfo.SelectedTrack
		if selected < 0 {
			selected = 0
		}
		startIndex := addResult.Offset + selected
		if startIndex >= p.Queue.Len() {
			startIndex = p.Queue.Len() - 1
		}
		if startIndex < 0 {
			startIndex = 0
		}
		if track, ok := p.Queue.SetIndex(startIndex); ok {
			result.Track = track
		}
		result.Playing = p.startPlayingInternal(ctx)
	}

	return result, nil
}

// StartPlaying pushes the current queue entry and voice state to the node
// if both are available, returning whether a request was actually sent.
func (p *Player) StartPlaying(ctx context.Context) bool {
	if p.Destroyed() {
		return false
	}
	return p.startPlayingInternal(ctx)
}

func (p *Player) startPlayingInternal(ctx context.Context) bool {
	track, ok := p.Queue.Current()
	conn := p.Connection()
	if !ok || !conn.Complete() {
		return false
	}

	encoded := track.Encoded
	paused := p.Paused()
	_, err := p.node.UpdatePlayer(ctx, p.GuildID, false, UpdatePlayerPatch{
		EncodedTrack: &encoded,
		Voice:        conn.toVoiceBlock(),
		Paused:       &paused,
	})
	return err == nil
}

// Skip moves forward with wraparound, ignoring loop mode, and restarts
// playback at the new position.
func (p *Player) Skip(ctx context.Context) (Track, bool, error) {
	if err := p.checkAlive(); err != nil {
		return Track{}, false, err
	}
	track, ok := p.Queue.Skip()
	if ok {
		p.startPlayingInternal(ctx)
	}
	return track, ok, nil
}

// Prev moves backward with wraparound, ignoring loop mode, and restarts
// playback at the new position.
func (p *Player) Prev(ctx context.Context) (Track, bool, error) {
	if err := p.checkAlive(); err != nil {
		return Track{}, false, err
	}
	track, ok := p.Queue.Prev()
	if ok {
		p.startPlayingInternal(ctx)
	}
	return track, ok, nil
}

// Next is invoked on a node TrackEndEvent{reason=FINISHED}. It applies the
// loop-mode advance rule; if nothing should autoplay it pauses locally
// instead of issuing a REST call.
func (p *Player) Next(ctx context.Context) {
	if p.Destroyed() {
		return
	}

	_, shouldPlay := p.Queue.Advance()
	if shouldPlay {
		p.startPlayingInternal(ctx)
		return
	}

	// LoopNoAutostart never autoplays; LoopNone pauses once it clamps at
	// the last index instead of wrapping. Other modes that returned
	// !shouldPlay (autoplay disabled) leave the paused flag untouched.
	mode := p.Queue.Mode()
	atEnd := mode == LoopNone && p.Queue.Index() == p.Queue.Len()-1
	if mode == LoopNoAutostart || atEnd {
		p.mu.Lock()
		p.paused = true
		p.mu.Unlock()
	}
}

// SetPaused sets the paused flag to paused, re-pushing the current track if the
// node has nothing loaded and we are unpausing.
func (p *Player) SetPaused(ctx context.Context, paused bool) error {
	if err := p.checkAlive(); err != nil {
		return err
	}

	state, err := p.node.GetPlayer(ctx, p.GuildID)
	hasRemotePlayer := true
	if err != nil {
		if restErr, ok := err.(*RestError); ok && restErr.Status == 404 {
			hasRemotePlayer = false
		} else {
			return err
		}
	}

	if !hasRemotePlayer {
		if !paused {
			p.startPlayingInternal(ctx)
		}
		p.mu.Lock()
		p.paused = paused
		p.mu.Unlock()
		return nil
	}

	if state.Track == nil && !paused {
		p.startPlayingInternal(ctx)
	}

	_, err = p.node.UpdatePlayer(ctx, p.GuildID, true, UpdatePlayerPatch{Paused: &paused})
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.paused = paused
	p.mu.Unlock()
	return nil
}

// Seek issues a position update and returns the node's confirmation
// against the known current track, if any.
func (p *Player) Seek(ctx context.Context, positionMs int64) (SeekResult, bool, error) {
	if err := p.checkAlive(); err != nil {
		return SeekResult{}, false, err
	}

	state, err := p.node.UpdatePlayer(ctx, p.GuildID, false, UpdatePlayerPatch{Position: &positionMs})
	if err != nil {
		return SeekResult{}, false, err
	}

	current, ok := p.Queue.Current()
	if state.Track == nil || !ok {
		return SeekResult{}, false, nil
	}

	return SeekResult{
		PositionMs: state.State.Position,
		TotalMs:    current.LengthMs,
		Track:      current,
	}, true, nil
}

// UpdateConnection pushes the current voice block if the connection is
// complete, using noReplace so an in-flight track is not disturbed.
func (p *Player) UpdateConnection(ctx context.Context) {
	if p.Destroyed() {
		return
	}
	conn := p.Connection()
	voice := conn.toVoiceBlock()
	if voice == nil {
		return
	}
	p.node.UpdatePlayer(ctx, p.GuildID, true, UpdatePlayerPatch{Voice: voice})
}

// setConnection mutates the voice connection under the player's lock. The
// caller must not be holding any other lock when it calls this; mutate
// runs with the player's lock held.
func (p *Player) setConnection(mutate func(*Connection)) {
	p.mu.Lock()
	mutate(&p.conn)
	p.mu.Unlock()
}

// Destroy is idempotent: it leaves the voice channel and, if the node is
// connected, destroys the remote player. Subsequent calls are no-ops.
func (p *Player) Destroy(ctx context.Context) {
	if !atomic.CompareAndSwapInt32(&p.destroyed, 0, 1) {
		return
	}

	p.voice.Leave(ctx, p.GuildID)

	if p.node.State() == NodeConnected {
		p.node.DestroyPlayer(ctx, p.GuildID)
	}
}

func trimmedQuery(q string) string {
	return strings.TrimSpace(q)
}
