package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/gen2brain/beeep"

	"soundctl.click/internal/chime"
	"soundctl.click/internal/config"
)

// chimeTimeout bounds chime playback, device open included
const chimeTimeout = 10 * time.Second

// Notifier sends a desktop notification
type Notifier interface {
	Notify(title, message string) error
}

// desktopNotifier sends notifications through beeep
type desktopNotifier struct{}

func (desktopNotifier) Notify(title, message string) error {
	// a fixed AppName keeps Windows from registering a new sender per run
	original := beeep.AppName
	beeep.AppName = appName
	defer func() {
		beeep.AppName = original
	}()
	return beeep.Notify(title, message, "")
}

// notify sends message when notifications are enabled. Failures are logged.
func (c *CLI) notify(cfg *config.Config, message string) {
	if !cfg.Notify || c.notifier == nil {
		return
	}
	if err := c.notifier.Notify(appName, message); err != nil {
		slog.Warn("desktop notification failed", "error", err)
		return
	}
	slog.Debug("desktop notification sent", "message", message)
}

// playChime plays the confirmation sound on the named render device when
// the chime is enabled. Failures are logged.
func (c *CLI) playChime(ctx context.Context, cfg *config.Config, device string) {
	if cfg.Chime == nil || !cfg.Chime.Enabled {
		return
	}

	file := c.configManager.ResolveChimeFile(cfg.Chime.File)
	if cfg.Chime.File != "" && file == "" {
		slog.Warn("chime file not found", "file", cfg.Chime.File)
		return
	}

	player := c.chimePlayer
	if player == nil {
		player = chime.NewPlayer()
	}

	sound := chime.New(c.chimeFS, player, chime.Options{
		File:        file,
		Volume:      cfg.Chime.Volume,
		FrequencyHz: cfg.Chime.FrequencyHz,
		DurationMs:  cfg.Chime.DurationMs,
	})
	defer func() {
		if err := sound.Close(); err != nil {
			slog.Warn("error closing chime player", "error", err)
		}
	}()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, chimeTimeout)
	defer cancel()

	if err := sound.Play(ctx, device); err != nil {
		slog.Warn("chime playback failed", "device", device, "error", err)
	}
}
