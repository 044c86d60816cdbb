package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"chronos-stats/internal/client"
	"chronos-stats/internal/config"
	"chronos-stats/internal/constants"
	"chronos-stats/internal/database"
	"chronos-stats/internal/db"
	"chronos-stats/internal/logger"
	"chronos-stats/internal/repository"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

func main() {
	log := logger.New()

	app := &cli.App{
		Name:    "statsctl",
		Usage:   "operate a stats ingestion database and service",
		Version: constants.Version,
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "apply pending schema migrations to DB_PATH",
				Action: func(c *cli.Context) error {
					return runMigrate(log)
				},
			},
			{
				Name:  "register-server",
				Usage: "issue a legacy serverid token for a game server endpoint",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "ip", Usage: "server IP address", Required: true},
					&cli.Int64Flag{Name: "port", Usage: "server port", Required: true},
					&cli.StringFlag{Name: "name", Usage: "display name", Value: constants.UnknownServerName},
				},
				Action: func(c *cli.Context) error {
					return runRegisterServer(c.Context, log, c.String("ip"), c.Int64("port"), c.String("name"))
				},
			},
			{
				Name:      "submit",
				Usage:     "post a JSON telemetry report to STATS_API_URL",
				ArgsUsage: "<file|->",
				Action: func(c *cli.Context) error {
					return runSubmit(c.Context, log, c.Args().First())
				},
			},
			{
				Name:  "summary",
				Usage: "print totals from STATS_API_URL",
				Action: func(c *cli.Context) error {
					return runSummary(c.Context, log)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Error().Err(err).Msg("statsctl failed")
		os.Exit(1)
	}
}

func runMigrate(log zerolog.Logger) error {
	cfg, err := config.Load(log)
	if err != nil {
		return err
	}
	sqlDB, err := database.New(cfg, log)
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func runRegisterServer(ctx context.Context, log zerolog.Logger, ip string, port int64, name string) error {
	cfg, err := config.Load(log)
	if err != nil {
		return err
	}
	sqlDB, err := database.New(cfg, log)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	registry := repository.NewIdentityRegistry(sqlDB, db.New(sqlDB), log)

	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	id, token, err := registry.RegisterServer(ctx, ip, port, name)
	if err != nil {
		return err
	}

	fmt.Printf("server_id=%d serverid=%s\n", id, token)
	return nil
}

func runSubmit(ctx context.Context, log zerolog.Logger, path string) error {
	if path == "" {
		return fmt.Errorf("submit needs a report file, or - for stdin")
	}

	var (
		body []byte
		err  error
	)
	if path == "-" {
		body, err = io.ReadAll(os.Stdin)
	} else {
		body, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("failed to read report: %w", err)
	}

	cfg, err := config.Load(log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, constants.ClientTimeout)
	defer cancel()

	resp, err := client.NewStatsClient(cfg).SubmitReport(ctx, body)
	if err != nil {
		return err
	}

	serverID := "none"
	if resp.ServerID != nil {
		serverID = fmt.Sprint(*resp.ServerID)
	}
	fmt.Printf("player_id=%d server_id=%s %s\n", resp.PlayerID, serverID, resp.Message)
	return nil
}

func runSummary(ctx context.Context, log zerolog.Logger) error {
	cfg, err := config.Load(log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, constants.ClientTimeout)
	defer cancel()

	summary, err := client.NewStatsClient(cfg).Summary(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("players=%d servers=%d maps=%d total_kills=%d\n", summary.Players, summary.Servers, summary.Maps, summary.TotalKills)
	return nil
}
