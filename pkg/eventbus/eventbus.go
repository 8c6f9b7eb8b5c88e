// Package eventbus publishes playback telemetry over MQTT for external
// dashboards. It is a side observer of the orchestrator: the calls into it
// sit next to the now-playing panel refresh, never on the critical path of
// a user command.
package eventbus

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nashiradeer/hydrogen-go/pkg/logger"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

const topicPrefix = "hydrogen/event"

// TrackStart is published when a node reports a track has started playing.
type TrackStart struct {
	GuildID string `json:"guildId"`
	Title   string `json:"title"`
	Author  string `json:"author"`
}

// TrackEnd is published when a node reports a track ended with reason
// FINISHED; other end reasons publish nothing.
type TrackEnd struct {
	GuildID string `json:"guildId"`
	Reason  string `json:"reason"`
}

// PlayerDestroyed is published when a guild's player is torn down, whether
// by idle timeout, an explicit stop, or a node disconnect cascade.
type PlayerDestroyed struct {
	GuildID string `json:"guildId"`
	Reason  string `json:"reason"`
}

// Bus wraps an MQTT client for one-way telemetry publication.
type Bus struct {
	client mqtt.Client
}

var (
	bus     *Bus
	busOnce sync.Once
)

// Init initializes the global event bus.
func Init(host, port, username, password, clientID string) *Bus {
	busOnce.Do(func() {
		bus = New(host, port, username, password, clientID)
	})
	return bus
}

// Get returns the global event bus, or nil if Init was never called.
func Get() *Bus {
	return bus
}

// New connects a standalone Bus to the given broker.
func New(host, port, username, password, clientID string) *Bus {
	uniqueID := fmt.Sprintf("%s_%s", clientID, uuid.New().String())

	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%s", host, port)).
		SetClientID(uniqueID).
		SetUsername(username).
		SetPassword(password).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(c mqtt.Client) {
			logger.Success(fmt.Sprintf("eventbus connected to broker as %s", clientID), "EVENTBUS")
		}).
		SetConnectionLostHandler(func(c mqtt.Client, err error) {
			logger.Error(fmt.Sprintf("eventbus connection lost: %v", err), "EVENTBUS")
		})

	b := &Bus{client: mqtt.NewClient(opts)}

	token := b.client.Connect()
	if token.Wait() && token.Error() != nil {
		logger.Error(fmt.Sprintf("eventbus connect error: %v", token.Error()), "EVENTBUS")
	}

	return b
}

// Close disconnects from the broker.
func (b *Bus) Close() {
	if b.client != nil && b.client.IsConnected() {
		b.client.Disconnect(250)
		logger.System("eventbus connection closed", "EVENTBUS")
	}
}

// Connected reports whether the bus is currently connected to the broker.
func (b *Bus) Connected() bool {
	return b.client != nil && b.client.IsConnected()
}

// publish marshals payload as JSON and publishes it under
// hydrogen/event/{kind}, logging (not failing) on error — telemetry must
// never block or fail the playback path it observes.
func (b *Bus) publish(kind string, payload interface{}) {
	if b.client == nil || !b.client.IsConnected() {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error(fmt.Sprintf("eventbus: marshal %s: %v", kind, err), "EVENTBUS")
		return
	}

	topic := fmt.Sprintf("%s/%s", topicPrefix, kind)
	token := b.client.Publish(topic, 0, false, data)
	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			logger.Error(fmt.Sprintf("eventbus: publish %s: %v", kind, err), "EVENTBUS")
		}
	}()
}

// PublishTrackStart publishes a TrackStart event.
func (b *Bus) PublishTrackStart(e TrackStart) { b.publish("track-start", e) }

// PublishTrackEnd publishes a TrackEnd event.
func (b *Bus) PublishTrackEnd(e TrackEnd) { b.publish("track-end", e) }

// PublishPlayerDestroyed publishes a PlayerDestroyed event.
func (b *Bus) PublishPlayerDestroyed(e PlayerDestroyed) { b.publish("player-destroyed", e) }
