// Package cli implements the commands of the kinema binary. cmd/kinema only
// parses flags and calls into this package.
package cli

import (
	"log/slog"
	"time"

	"github.com/aretw0/kinema/internal/config"
)

// RunOptions contains the configuration shared by the commands that build
// a player.
type RunOptions struct {
	// Animation is a Lottie JSON or .lottie file, or an animation id of the
	// project.
	Animation string
	// Machine is a definition file or a state machine id of the bundle or
	// project. Empty plays the animation without a state machine.
	Machine string
	// Project is a Loam project directory used to resolve ids.
	Project string
	Theme   string

	Width, Height uint32
	Speed         float64
	Loop          bool
	Autoplay      bool

	SessionID string
	Fresh     bool
	StoreDir  string
	RedisAddr string
	RedisPass string
	RedisDB   int

	// SessionTTL expires Redis snapshots; zero keeps them.
	SessionTTL time.Duration

	// EncryptionKey is a base64 AES-256 key; empty stores plain snapshots.
	EncryptionKey string
	MaskInputs    []string

	JSON        bool
	Headless    bool
	ReadOnly    bool
	Allow       []string
	Confirm     bool
	Watch       bool
	Frames      bool
	FPS         float64
	FixedStep   bool
	MaxDuration time.Duration
	UntilDone   bool

	// Hooks is a hooks.yaml file binding custom events to commands.
	Hooks string

	Debug     bool
	LogFormat string
}

// FromConfig fills the options the environment configures.
func FromConfig(cfg config.Config) RunOptions {
	return RunOptions{
		Width:         512,
		Height:        512,
		Speed:         1,
		FPS:           cfg.FPS,
		StoreDir:      cfg.StoreDir,
		RedisAddr:     cfg.RedisAddr,
		RedisPass:     cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
		SessionTTL:    cfg.SessionTTL,
		EncryptionKey: cfg.EncryptionKey,
		MaskInputs:    cfg.MaskInputs,
		Hooks:         cfg.Hooks,
		LogFormat:     cfg.LogFormat,
		Debug:         cfg.Level() <= slog.LevelDebug,
	}
}

func (o RunOptions) quiet() bool { return o.JSON || o.Headless }
