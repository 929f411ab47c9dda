/*
Package runner drives a kinema.Player from a terminal or a pipe.

The Runner owns the clock: it ticks the player at a fixed rate, reads
commands from an IOHandler between ticks and writes every player and state
machine notification back through the same handler.

Two handlers are provided:

  - TextHandler: line-oriented commands ("click 20 20", "set clicks 3") and
    human readable notifications.
  - JSONHandler: JSON Lines in both directions, for host processes.

Commands pass through a CommandInterceptor before they reach the player, so
a host can make a session read-only or restrict the verbs it accepts.

	r := runner.NewRunner(
		runner.WithInputHandler(runner.NewJSONHandler(os.Stdin, os.Stdout)),
		runner.WithFPS(30),
		runner.WithStopOnComplete(true),
	)
	err := r.Run(ctx, player)
*/
package runner
