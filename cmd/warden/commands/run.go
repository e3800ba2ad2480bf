package commands

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dyluth/warden/internal/config"
	"github.com/dyluth/warden/internal/console"
	"github.com/dyluth/warden/internal/health"
	"github.com/dyluth/warden/internal/identity"
	"github.com/dyluth/warden/internal/pipeline"
	"github.com/dyluth/warden/internal/transport"
	"github.com/dyluth/warden/internal/twitch"
	"github.com/dyluth/warden/pkg/registry"
	"github.com/spf13/cobra"
)

const (
	// startupTimeout bounds broadcaster resolution at boot.
	startupTimeout = 15 * time.Second

	// reconnectPause is the wait before re-dialing after a session failure.
	reconnectPause = 5 * time.Second
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the redemption reconciliation daemon",
	Long: `Connects to Twitch EventSub, listens for channel-points redemptions of
the configured reward, and reconciles each one against the identity
service, the registry, and the server whitelist.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		return runDaemon(cfg)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runDaemon(cfg *config.Config) error {
	log.Printf("[INFO] Warden starting: channel=%s reward_id=%s storage=%s console=%s",
		cfg.Channel, cfg.RewardID, cfg.Storage.Backend, cfg.Console.Backend)

	// Set up context cancelled by SIGINT/SIGTERM for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Registry store and in-memory registry.
	store, err := newStore(cfg)
	if err != nil {
		return err
	}
	if closer, ok := store.(interface{ Close() error }); ok {
		defer closer.Close()
	}
	reg := registry.Open(ctx, store)
	log.Printf("[INFO] Registry loaded: entries=%d backend=%s", reg.Len(), cfg.Storage.Backend)

	// External collaborators.
	httpClient := &http.Client{}

	helix, err := twitch.NewClient(httpClient, cfg.ClientID, cfg.ClientSecret)
	if err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	broadcasterID, err := helix.ResolveBroadcaster(startCtx, cfg.Channel)
	cancel()
	if err != nil {
		return err
	}
	log.Printf("[INFO] Resolved channel %s: broadcaster_id=%s", cfg.Channel, broadcasterID)

	gateway, err := newConsole(ctx, cfg)
	if err != nil {
		return err
	}

	verifier := identity.NewVerifier(httpClient)
	refunder := twitch.NewRefunder(helix, broadcasterID, cfg.RewardID)
	pipe := pipeline.New(reg, verifier, gateway, refunder)

	// Optional health endpoint.
	if cfg.Health.Port > 0 {
		healthServer := health.NewServer(reg, cfg.Health.Port)
		healthServer.Start()
		log.Printf("[INFO] Health server started on :%d", cfg.Health.Port)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			healthServer.Shutdown(shutdownCtx)
		}()
	}

	// Event loop: each session failure gets a fresh dial after a pause.
	eventsub := transport.New(helix, broadcasterID, cfg.RewardID)
	handler := func(ctx context.Context, ev pipeline.Event) {
		if _, err := pipe.Handle(ctx, ev); err != nil {
			// Durability alert: the mapping committed but did not reach
			// the store. Already logged in detail by the pipeline.
			log.Printf("[ERROR] Durability alert for redemption %s: %v", ev.RedemptionID, err)
		}
	}

	for {
		err := eventsub.Run(ctx, handler)
		if ctx.Err() != nil {
			log.Printf("[INFO] Shutdown signal received, warden stopping")
			return nil
		}
		log.Printf("[ERROR] EventSub session failed, reconnecting in %s: %v", reconnectPause, err)

		select {
		case <-ctx.Done():
			log.Printf("[INFO] Shutdown signal received, warden stopping")
			return nil
		case <-time.After(reconnectPause):
		}
	}
}

// newConsole builds the console gateway selected by the configuration.
func newConsole(ctx context.Context, cfg *config.Config) (console.Gateway, error) {
	switch cfg.Console.Backend {
	case config.ConsoleDocker:
		return console.NewDockerConsole(ctx, cfg.Console.Container)
	default:
		return console.NewScreenConsole(cfg.Console.ScreenSession)
	}
}
