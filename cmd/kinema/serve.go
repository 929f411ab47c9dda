package main

import (
	"github.com/aretw0/kinema/internal/cli"
	"github.com/aretw0/kinema/internal/config"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve <animation>",
	Short: "Serve player sessions over HTTP",
	Long: `Starts an HTTP server where every session is a player of the given
animation and state machine. Sessions are ticked at --fps, persisted to the
session store, and streamed over websockets. /metrics serves Prometheus
metrics and /openapi.yaml describes the API.

With --mqtt-broker, notifications are also published to MQTT and control
messages are accepted on <prefix>/<session>/events and .../commands.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := serveOptions(cmd, args[0])
		if err != nil {
			return err
		}
		return cli.Serve(cmd.Context(), opts, cmd.OutOrStdout())
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp <animation>",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes player sessions as MCP tools so that AI agents can post
events, set inputs and inspect state machines.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		serve, err := serveOptions(cmd, args[0])
		if err != nil {
			return err
		}
		opts := cli.MCPOptions{ServeOptions: serve}
		opts.Transport, _ = cmd.Flags().GetString("transport")
		opts.Port, _ = cmd.Flags().GetInt("port")
		return cli.ServeMCP(cmd.Context(), opts)
	},
}

func serveOptions(cmd *cobra.Command, animation string) (cli.ServeOptions, error) {
	run, err := runOptions(cmd)
	if err != nil {
		return cli.ServeOptions{}, err
	}
	playerOptions(cmd, &run)
	run.Animation = animation

	cfg, err := config.Load()
	if err != nil {
		return cli.ServeOptions{}, err
	}
	opts := cli.ServeOptions{
		RunOptions:     run,
		Addr:           cfg.HTTPAddr,
		AllowedOrigins: cfg.AllowedOrigins,
		MQTTBroker:     cfg.MQTTBroker,
		MQTTClientID:   cfg.MQTTClientID,
		MQTTPrefix:     cfg.MQTTPrefix,
	}
	flags := cmd.Flags()
	if flags.Changed("addr") {
		opts.Addr, _ = flags.GetString("addr")
	}
	if flags.Changed("mqtt-broker") {
		opts.MQTTBroker, _ = flags.GetString("mqtt-broker")
	}
	if flags.Changed("mqtt-prefix") {
		opts.MQTTPrefix, _ = flags.GetString("mqtt-prefix")
	}
	return opts, nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)

	for _, cmd := range []*cobra.Command{serveCmd, mcpCmd} {
		addPlayerFlags(cmd)
	}
	serveCmd.Flags().String("addr", ":8080", "Listen address (env KINEMA_HTTP_ADDR)")
	serveCmd.Flags().String("mqtt-broker", "", "MQTT broker URL, e.g. tcp://localhost:1883 (env KINEMA_MQTT_BROKER)")
	serveCmd.Flags().String("mqtt-prefix", "kinema", "MQTT topic root (env KINEMA_MQTT_PREFIX)")

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
