package orchestrator

import (
	"sync"
	"time"
)

// IdleDestroyer arms a cancellable timer per guild that destroys a player
// once its voice channel has had at most one non-bot member for the grace
// period.
type IdleDestroyer struct {
	mu     sync.Mutex
	timers map[string]*time.Timer

	destroy func(guildID string)
}

// NewIdleDestroyer builds an IdleDestroyer that calls destroy when a timer
// fires. destroy is typically Orchestrator.Destroy.
func NewIdleDestroyer(destroy func(guildID string)) *IdleDestroyer {
	return &IdleDestroyer{
		timers:  make(map[string]*time.Timer),
		destroy: destroy,
	}
}

// Arm schedules a destroy after duration unless a timer is already armed
// for this guild. The "no timer already armed" check is what resolves the
// race between Arm and a concurrent member rejoining: whichever wins sets
// the map entry first, the loser observes it and does nothing.
func (d *IdleDestroyer) Arm(guildID string, duration time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, armed := d.timers[guildID]; armed {
		return
	}

	d.timers[guildID] = time.AfterFunc(duration, func() {
		d.mu.Lock()
		delete(d.timers, guildID)
		d.mu.Unlock()
		d.destroy(guildID)
	})
}

// Cancel aborts and removes any armed timer for the guild.
func (d *IdleDestroyer) Cancel(guildID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, armed := d.timers[guildID]; armed {
		t.Stop()
		delete(d.timers, guildID)
	}
}

// Armed reports whether a timer is currently scheduled for the guild.
func (d *IdleDestroyer) Armed(guildID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.timers[guildID]
	return ok
}
