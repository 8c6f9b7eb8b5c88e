package eventbus

import "testing"

func TestConnectedFalseWithoutClient(t *testing.T) {
	b := &Bus{}
	if b.Connected() {
		t.Fatal("expected Connected() to be false with no underlying client")
	}
}

func TestPublishIsNoopWithoutConnection(t *testing.T) {
	b := &Bus{}
	// None of these must panic when there is no broker connection.
	b.PublishTrackStart(TrackStart{GuildID: "g1", Title: "song"})
	b.PublishTrackEnd(TrackEnd{GuildID: "g1", Reason: "FINISHED"})
	b.PublishPlayerDestroyed(PlayerDestroyed{GuildID: "g1", Reason: "idle"})
}
