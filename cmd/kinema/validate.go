package main

import (
	"github.com/aretw0/kinema/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <machine>",
	Short: "Check a state machine definition",
	Long: `Loads a state machine definition and reports errors and warnings:
unreachable states, unused inputs and, with --animation, markers the
animation does not have.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := runOptions(cmd)
		if err != nil {
			return err
		}
		opts.Machine = args[0]
		opts.Animation, _ = cmd.Flags().GetString("animation")
		return cli.Validate(opts, cmd.OutOrStdout())
	},
}

var graphCmd = &cobra.Command{
	Use:   "graph <machine>",
	Short: "Print a state machine as a Mermaid flowchart",
	Long:  `Prints the states and transitions of a definition as Mermaid. With --session the stored state is highlighted.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := runOptions(cmd)
		if err != nil {
			return err
		}
		opts.Machine = args[0]
		opts.Animation, _ = cmd.Flags().GetString("animation")
		return cli.Graph(cmd.Context(), opts, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(graphCmd)

	validateCmd.Flags().StringP("animation", "a", "", "Animation file or id to check markers against")
	graphCmd.Flags().StringP("animation", "a", "", "Animation (.lottie bundle or project id) holding the machine")
}
