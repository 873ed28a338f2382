package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/eskrenkovic/ludo-server/internal/config"
	"github.com/eskrenkovic/ludo-server/internal/server"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func main() {
	cmd := &cli.Command{
		Name:  "ludo-server",
		Usage: "multiplayer Ludo game and chat server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "root",
				Usage: "directory holding config.env and db/migrations",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	if rootPath := cmd.String("root"); rootPath != "" {
		if err := godotenv.Load(path.Join(rootPath, "config.env")); err != nil {
			return err
		}

		if _, found := os.LookupEnv(config.RootPathEnv); !found {
			if err := os.Setenv(config.RootPathEnv, rootPath); err != nil {
				return err
			}
		}
	}

	conf, err := config.Load()
	if err != nil {
		return err
	}

	undo := zap.ReplaceGlobals(conf.Logger)
	defer undo()

	s, err := server.NewGameServer(conf)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errs := make(chan error, 1)
	go func() {
		errs <- s.Start()
	}()

	select {
	case <-ctx.Done():
		conf.Logger.Info("shutting down")
		return s.Stop()
	case err := <-errs:
		if stopErr := s.Stop(); stopErr != nil {
			conf.Logger.Error("failed to stop server", zap.Error(stopErr))
		}
		return err
	}
}
