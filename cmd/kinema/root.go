package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/kinema/internal/cli"
	"github.com/aretw0/kinema/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "kinema",
	Short: "Kinema is an interactive animation player",
	Long: `Kinema plays Lottie and dotLottie animations and drives them with
interactive state machines. Animations, state machines and themes are
read from files, from .lottie bundles or from a Loam project directory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("project", "p", "", "Loam project directory resolving animation, machine and theme ids")
	rootCmd.PersistentFlags().String("session", "", "Session id; set it to persist the state machine between runs")
	rootCmd.PersistentFlags().String("store-dir", "", "Directory of the file session store (env KINEMA_STORE_DIR)")
	rootCmd.PersistentFlags().String("redis", "", "Redis address of the session store (env KINEMA_REDIS_ADDR)")
	rootCmd.PersistentFlags().Bool("json", false, "Use JSON input and output")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging on stderr")
}

// runOptions merges the environment configuration with the flags the user
// set explicitly.
func runOptions(cmd *cobra.Command) (cli.RunOptions, error) {
	cfg, err := config.Load()
	if err != nil {
		return cli.RunOptions{}, err
	}
	opts := cli.FromConfig(cfg)

	flags := cmd.Flags()
	opts.Project, _ = flags.GetString("project")
	opts.SessionID, _ = flags.GetString("session")
	opts.JSON, _ = flags.GetBool("json")
	if flags.Changed("debug") {
		opts.Debug, _ = flags.GetBool("debug")
	}
	if flags.Changed("store-dir") {
		opts.StoreDir, _ = flags.GetString("store-dir")
	}
	if flags.Changed("redis") {
		opts.RedisAddr, _ = flags.GetString("redis")
	}
	return opts, nil
}

// addPlayerFlags registers the flags describing what to load.
func addPlayerFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("machine", "m", "", "State machine file or id")
	cmd.Flags().String("theme", "", "Theme id applied after loading")
	cmd.Flags().Uint32("width", 512, "Render width in pixels")
	cmd.Flags().Uint32("height", 512, "Render height in pixels")
	cmd.Flags().Float64("speed", 1, "Playback speed")
	cmd.Flags().Bool("loop", false, "Loop playback without a state machine")
	cmd.Flags().Bool("no-autoplay", false, "Do not start playback on load")
	cmd.Flags().Float64("fps", 0, "Tick rate (env KINEMA_FPS)")
	cmd.Flags().Bool("frames", false, "Also emit frame and render notifications")
}

// playerOptions reads the flags of addPlayerFlags into opts.
func playerOptions(cmd *cobra.Command, opts *cli.RunOptions) {
	flags := cmd.Flags()
	opts.Machine, _ = flags.GetString("machine")
	opts.Theme, _ = flags.GetString("theme")
	opts.Width, _ = flags.GetUint32("width")
	opts.Height, _ = flags.GetUint32("height")
	opts.Speed, _ = flags.GetFloat64("speed")
	opts.Loop, _ = flags.GetBool("loop")
	noAutoplay, _ := flags.GetBool("no-autoplay")
	opts.Autoplay = !noAutoplay
	opts.Frames, _ = flags.GetBool("frames")
	if flags.Changed("fps") {
		opts.FPS, _ = flags.GetFloat64("fps")
	}
}
