package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"slices"
	"time"

	"github.com/aretw0/kinema"
	"github.com/aretw0/kinema/internal/logging"
	httpadapter "github.com/aretw0/kinema/pkg/adapters/http"
	"github.com/aretw0/kinema/pkg/adapters/mqtt"
	"github.com/aretw0/kinema/pkg/observability"
	"github.com/aretw0/kinema/pkg/session"
	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// ServeOptions configures the serve command.
type ServeOptions struct {
	RunOptions

	Addr           string
	AllowedOrigins []string

	MQTTBroker   string
	MQTTClientID string
	MQTTPrefix   string
}

// serverLogger always logs: servers have no interactive output to fall
// back on.
func serverLogger(opts RunOptions) *slog.Logger {
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	return logging.NewWithFormat(os.Stderr, level, opts.LogFormat)
}

// Services are the long lived parts of a server process.
type Services struct {
	Sessions *session.Manager
	HTTP     *httpadapter.Server
	Registry *prometheus.Registry

	persistence *Persistence
}

// Close releases the persistence backend.
func (s *Services) Close() error { return s.persistence.Close() }

// NewServices wires the session manager and the HTTP server. attach, when
// set, is called for every new session player.
func NewServices(opts ServeOptions, logger *slog.Logger, attach func(string, *kinema.Player)) (*Services, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := observability.NewMetrics(registry)
	if err != nil {
		return nil, err
	}

	persistence, err := setupPersistence(opts.RunOptions)
	if err != nil {
		return nil, err
	}
	factory, err := NewPlayerFactory(opts.RunOptions, logger, metrics)
	if err != nil {
		persistence.Close()
		return nil, err
	}

	sessionOpts := []session.Option{session.WithLogger(logger)}
	if persistence.Locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(persistence.Locker))
	}
	manager := session.NewManager(persistence.Store, func(ctx context.Context, id string) (*kinema.Player, error) {
		p, err := factory(ctx, id)
		if err == nil && attach != nil {
			attach(id, p)
		}
		return p, err
	}, sessionOpts...)

	serverOpts := []httpadapter.Option{
		httpadapter.WithLogger(logger),
		httpadapter.WithMetrics(registry),
	}
	if len(opts.AllowedOrigins) > 0 {
		serverOpts = append(serverOpts, httpadapter.WithCheckOrigin(func(r *http.Request) bool {
			return slices.Contains(opts.AllowedOrigins, r.Header.Get("Origin"))
		}))
	}
	srv, err := httpadapter.NewServer(manager, serverOpts...)
	if err != nil {
		persistence.Close()
		return nil, err
	}
	return &Services{Sessions: manager, HTTP: srv, Registry: registry, persistence: persistence}, nil
}

// Serve runs the HTTP server, the tick driver and, with a broker, the MQTT
// bridge until ctx is done.
func Serve(ctx context.Context, opts ServeOptions, out io.Writer) error {
	logger := serverLogger(opts.RunOptions)

	var bridge *mqtt.Bridge
	services, err := NewServices(opts, logger, func(id string, p *kinema.Player) {
		if bridge != nil {
			bridge.Attach(id, p)
		}
	})
	if err != nil {
		return err
	}
	defer services.Close()

	if opts.MQTTBroker != "" {
		var disconnect func()
		bridge, disconnect, err = startBridge(opts, services.HTTP, logger)
		if err != nil {
			return err
		}
		defer disconnect()
	}

	driveCtx, stopDriving := context.WithCancel(ctx)
	defer stopDriving()
	go services.HTTP.Drive(driveCtx, opts.FPS)

	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           services.HTTP.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		printSystemMessage(out, "Kinema %s serving %s on %s", kinema.Version, opts.Animation, opts.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown did not complete", "err", err)
			if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
		}
		printSystemMessage(out, "Server stopped gracefully.")
		return nil
	}
}

func startBridge(opts ServeOptions, sessions mqtt.Doer, logger *slog.Logger) (*mqtt.Bridge, func(), error) {
	var bridge *mqtt.Bridge
	ready := make(chan struct{})
	client, err := mqtt.Connect(opts.MQTTBroker, opts.MQTTClientID, func(paho.Client) {
		// Subscriptions are restored on every reconnection.
		go func() {
			<-ready
			if err := bridge.Listen(); err != nil {
				logger.Error("MQTT subscribe failed", "err", err)
			}
		}()
	})
	if err != nil {
		return nil, nil, err
	}
	bridge = mqtt.NewBridge(client, sessions,
		mqtt.WithPrefix(opts.MQTTPrefix),
		mqtt.WithFrames(opts.Frames),
		mqtt.WithLogger(logger),
	)
	close(ready)
	logger.Info("MQTT bridge connected", "broker", opts.MQTTBroker, "prefix", opts.MQTTPrefix)
	disconnect := func() {
		bridge.Close()
		client.Disconnect(250)
	}
	return bridge, disconnect, nil
}
