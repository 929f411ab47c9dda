package main

import (
	"github.com/aretw0/kinema/internal/cli"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:     "play <animation>",
	Aliases: []string{"run"},
	Short:   "Play an animation interactively",
	Long: `Plays an animation and reads commands from stdin: playback control,
pointer events and state machine inputs. Type 'help' for the list.

The animation is a Lottie JSON file, a .lottie bundle, or an animation id
of the --project. With --watch the project is reloaded on every change and
the session is carried over.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := runOptions(cmd)
		if err != nil {
			return err
		}
		playerOptions(cmd, &opts)
		opts.Animation = args[0]

		flags := cmd.Flags()
		opts.Headless, _ = flags.GetBool("headless")
		opts.Watch, _ = flags.GetBool("watch")
		opts.Fresh, _ = flags.GetBool("fresh")
		opts.ReadOnly, _ = flags.GetBool("read-only")
		opts.Allow, _ = flags.GetStringSlice("allow")
		opts.Confirm, _ = flags.GetBool("confirm")
		opts.FixedStep, _ = flags.GetBool("fixed-step")
		opts.MaxDuration, _ = flags.GetDuration("max-duration")
		opts.UntilDone, _ = flags.GetBool("until-done")
		if flags.Changed("hooks") {
			opts.Hooks, _ = flags.GetString("hooks")
		}

		return cli.Execute(cmd.Context(), opts, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(playCmd)
	addPlayerFlags(playCmd)

	playCmd.Flags().Bool("headless", false, "Run without banner, colors or system messages")
	playCmd.Flags().BoolP("watch", "w", false, "Reload the --project on change, keeping the session")
	playCmd.Flags().Bool("fresh", false, "Discard the stored session before starting")
	playCmd.Flags().Bool("read-only", false, "Only allow commands that do not change the player")
	playCmd.Flags().StringSlice("allow", nil, "Only allow these command verbs")
	playCmd.Flags().Bool("confirm", false, "Ask before running commands that change the player")
	playCmd.Flags().Bool("fixed-step", false, "Advance exactly 1/fps per tick for reproducible runs")
	playCmd.Flags().Duration("max-duration", 0, "Stop after this long")
	playCmd.Flags().Bool("until-done", false, "Stop once playback completes and no state machine runs")
	playCmd.Flags().String("hooks", "", "hooks.yaml binding custom events to commands")
}
