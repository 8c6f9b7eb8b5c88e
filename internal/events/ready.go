// Package events provides event handlers for the bot
package events

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/nashiradeer/hydrogen-go/pkg/config"
	"github.com/nashiradeer/hydrogen-go/pkg/discord"
	"github.com/nashiradeer/hydrogen-go/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// RegisterReadyEvent registers the ready event handler
func RegisterReadyEvent(client *discord.ExtendedClient) {
	client.Session.AddHandler(onReady)
}

type StatusOption struct {
	Type discordgo.ActivityType
	Text string
}

var statusList = []StatusOption{
	{discordgo.ActivityTypeListening, "/play | %s"},
	{discordgo.ActivityTypeWatching, "%d servers"},
}

// onReady only fires once the gateway handshake is fully complete.
func onReady(s *discordgo.Session, r *discordgo.Ready) {
	logger.Success(fmt.Sprintf("Connected as: %s#%s", r.User.Username, r.User.Discriminator), "Ready")
	logger.Info(fmt.Sprintf("Connected to %d guilds", len(r.Guilds)), "Ready")

	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		rotateStatus(s)
		for range ticker.C {
			rotateStatus(s)
		}
	}()

	logger.Debug("Bot status loop started", "Ready")
}

func rotateStatus(s *discordgo.Session) {
	idx := rand.Intn(len(statusList))
	selected := statusList[idx]

	statusText := selected.Text
	if strings.Contains(statusText, "%d") {
		guildCount := len(s.State.Guilds)
		statusText = fmt.Sprintf(statusText, guildCount)
	} else if strings.Contains(statusText, "%s") {
		statusText = fmt.Sprintf(statusText, config.Version)
	}

	err := s.UpdateStatusComplex(discordgo.UpdateStatusData{
		Activities: []*discordgo.Activity{
			{
				Name: statusText,
				Type: selected.Type,
			},
		},
		Status: "dnd",
		AFK:    false,
	})

	if err != nil {
		logger.Error(fmt.Sprintf("Error rotating status: %v", err), "Ready")
	}
}
