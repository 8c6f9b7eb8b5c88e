package discordbot

import (
	"testing"

	"github.com/nashiradeer/hydrogen-go/internal/orchestrator"
)

func TestRenderEmbedCarriesTitleAndFields(t *testing.T) {
	embed := renderEmbed(orchestrator.PanelRender{
		Title:       "Now playing",
		Description: "some track",
		Fields: map[string]string{
			"Requested by": "someone",
		},
	})

	if embed.Title != "Now playing" {
		t.Errorf("unexpected title: %q", embed.Title)
	}
	if embed.Description != "some track" {
		t.Errorf("unexpected description: %q", embed.Description)
	}
	if len(embed.Fields) != 1 || embed.Fields[0].Name != "Requested by" {
		t.Errorf("unexpected fields: %+v", embed.Fields)
	}
}

func TestRenderEmbedHandlesNoFields(t *testing.T) {
	embed := renderEmbed(orchestrator.PanelRender{Title: "Nothing playing"})
	if len(embed.Fields) != 0 {
		t.Errorf("expected no fields, got %+v", embed.Fields)
	}
}
