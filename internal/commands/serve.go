package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/beesaferoot/rental-engine/internal/gateway"
	"github.com/beesaferoot/rental-engine/internal/migration"
	"github.com/beesaferoot/rental-engine/internal/property"
	"github.com/beesaferoot/rental-engine/internal/repository"
	"github.com/beesaferoot/rental-engine/internal/reservation"
)

func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			noMigrate, _ := cmd.Flags().GetBool("no-migrate")
			debug, _ := cmd.Flags().GetBool("debug")
			addr, _ := cmd.Flags().GetString("addr")

			e, err := setup(debug)
			if err != nil {
				return err
			}
			defer e.close()

			if !noMigrate {
				applied, err := migration.NewMigrator(e.db).Up()
				if err != nil {
					return err
				}
				for _, m := range applied {
					e.logger.Info("migration applied", "version", m.Version, "name", m.Name)
				}
			}

			if debug {
				gin.SetMode(gin.DebugMode)
			} else {
				gin.SetMode(gin.ReleaseMode)
			}

			store := repository.NewStore(e.db)
			authn, err := e.authenticator(store)
			if err != nil {
				return err
			}
			gw, err := gateway.New(gateway.Deps{
				Auth:       authn,
				Properties: property.NewService(store.Properties(), e.logger),
				Reservations: reservation.NewEngine(store,
					reservation.WithLocation(e.cfg.Location),
					reservation.WithLogger(e.logger),
				),
				Health: store,
				Logger: e.logger,
			})
			if err != nil {
				return fmt.Errorf("failed to build gateway: %w", err)
			}

			if addr == "" {
				addr = e.cfg.ListenAddr
			}
			ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return gw.Serve(ctx, addr)
		},
	}

	cmd.Flags().Bool("no-migrate", false, "Do not apply pending migrations on startup")
	cmd.Flags().Bool("debug", false, "Enable debug logging")
	cmd.Flags().String("addr", "", "Listen address (overrides LISTEN_ADDR)")

	return cmd
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
