package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gots/slice"
	"github.com/secmon-lab/vanguard/pkg/cli/config"
	"github.com/secmon-lab/vanguard/pkg/controller/server"
	"github.com/secmon-lab/vanguard/pkg/domain/interfaces"
	"github.com/secmon-lab/vanguard/pkg/infra"
	"github.com/secmon-lab/vanguard/pkg/infra/fetch"
	"github.com/secmon-lab/vanguard/pkg/infra/registry"
	"github.com/secmon-lab/vanguard/pkg/infra/scanner"
	"github.com/secmon-lab/vanguard/pkg/source"
	"github.com/secmon-lab/vanguard/pkg/usecase"
	"github.com/secmon-lab/vanguard/pkg/utils/logging"

	"github.com/urfave/cli/v3"
)

func serveCommand() *cli.Command {
	var (
		addr          string
		runnerPath    string
		dockerPath    string
		registryRepo  string
		artifactRoot  string
		workspaceRoot string
		signerID      string
		workers       int64

		trustCfg   config.Trust
		storageCfg config.Storage
		cosignCfg  config.Cosign
		bigQuery   config.BigQuery
		sentry     config.Sentry
	)
	serveFlags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Binding address",
			Value:       "127.0.0.1:8000",
			Sources:     cli.EnvVars("VANGUARD_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "runner-path",
			Usage:       "Path to scan runner binary (built-in sample scanner if empty)",
			Sources:     cli.EnvVars("VANGUARD_RUNNER_PATH"),
			Destination: &runnerPath,
		},
		&cli.StringFlag{
			Name:        "docker-path",
			Usage:       "Path to docker binary",
			Value:       "docker",
			Sources:     cli.EnvVars("VANGUARD_DOCKER_PATH"),
			Destination: &dockerPath,
		},
		&cli.StringFlag{
			Name:        "registry-repo",
			Usage:       "Target repository for publishing scan images (disabled if empty)",
			Sources:     cli.EnvVars("VANGUARD_REGISTRY_REPO"),
			Destination: &registryRepo,
		},
		&cli.StringFlag{
			Name:        "artifact-root",
			Usage:       "Directory for scan bundles",
			Value:       "artifacts",
			Sources:     cli.EnvVars("VANGUARD_ARTIFACT_ROOT"),
			Destination: &artifactRoot,
		},
		&cli.StringFlag{
			Name:        "workspace-root",
			Usage:       "Directory for resolved source workspaces (system temp if empty)",
			Sources:     cli.EnvVars("VANGUARD_WORKSPACE_ROOT"),
			Destination: &workspaceRoot,
		},
		&cli.StringFlag{
			Name:        "signer-id",
			Usage:       "Signer identity for upload requests",
			Value:       "vanguard",
			Sources:     cli.EnvVars("VANGUARD_SIGNER_ID"),
			Destination: &signerID,
		},
		&cli.Int64Flag{
			Name:        "workers",
			Usage:       "Number of concurrent scan workers",
			Value:       2,
			Sources:     cli.EnvVars("VANGUARD_WORKERS"),
			Destination: &workers,
		},
	}

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Server mode",
		Flags: slice.Flatten(
			serveFlags,
			trustCfg.Flags(),
			storageCfg.Flags(),
			cosignCfg.Flags(),
			bigQuery.Flags(),
			sentry.Flags(),
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			logging.Default().Info("starting serve",
				slog.Any("Addr", addr),
				slog.Any("RunnerPath", runnerPath),
				slog.Any("ArtifactRoot", artifactRoot),
				slog.Any("Workers", workers),
				slog.Any("Trust", trustCfg),
				slog.Any("Storage", storageCfg),
				slog.Any("Cosign", cosignCfg),
				slog.Any("BigQuery", bigQuery),
				slog.Any("Sentry", sentry),
			)

			if err := sentry.Configure(ctx); err != nil {
				return err
			}

			var scanClient interfaces.Scanner = scanner.NewSample()
			if runnerPath != "" {
				scanClient = scanner.NewExec(runnerPath)
			}

			registryClient := registry.New(dockerPath)

			storageClient, err := storageCfg.NewClient(ctx)
			if err != nil {
				return err
			}

			fetchOpts := []fetch.Option{
				fetch.WithRegistry(registryClient),
			}
			if storageClient != nil {
				fetchOpts = append(fetchOpts, fetch.WithObjectStorage(storageClient))
			}

			infraOptions := []infra.Option{
				infra.WithScanner(scanClient),
				infra.WithRegistry(registryClient),
				infra.WithFetcher(fetch.New(fetchOpts...)),
			}

			if trustClient := trustCfg.NewClient(); trustClient != nil {
				infraOptions = append(infraOptions, infra.WithTrust(trustClient))
			}
			if storageClient != nil {
				infraOptions = append(infraOptions, infra.WithStorage(storageClient))
			}
			if cosignClient := cosignCfg.NewClient(); cosignClient != nil {
				infraOptions = append(infraOptions, infra.WithCosign(cosignClient))
			}
			if bqClient, err := bigQuery.NewClient(ctx); err != nil {
				return err
			} else if bqClient != nil {
				infraOptions = append(infraOptions, infra.WithAnalytics(bqClient))
			}

			clients := infra.New(infraOptions...)

			ucOptions := []usecase.Option{
				usecase.WithArtifactRoot(artifactRoot),
				usecase.WithWorkers(int(workers)),
				usecase.WithSignerID(signerID),
				usecase.WithTrustFailClosed(trustCfg.FailClosed()),
			}
			if workspaceRoot != "" {
				ucOptions = append(ucOptions, usecase.WithResolver(source.New(source.WithWorkspaceRoot(workspaceRoot))))
			}
			if storageClient != nil && registryRepo != "" {
				stager := usecase.NewObjectStager(storageClient)
				ucOptions = append(ucOptions, usecase.WithPublisher(
					usecase.NewRegistryMirror(stager, registryClient, cosignCfg.NewClient(), registryRepo),
				))
			}

			uc := usecase.New(clients, ucOptions...)
			s := server.New(uc)

			serverErr := make(chan error, 1)
			httpServer := &http.Server{
				Addr:    addr,
				Handler: s.Mux(),

				ReadHeaderTimeout: 10 * time.Second,
				ReadTimeout:       30 * time.Second,
				// Long enough for event streaming; the handler also honors
				// client disconnect.
				WriteTimeout: 10 * time.Minute,
			}

			go func() {
				logging.Default().Info("starting http server", "addr", addr)
				if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
					serverErr <- goerr.Wrap(err, "failed to listen and serve")
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-serverErr:
				return err

			case sig := <-quit:
				logging.Default().Info("shutting down server", "signal", sig)

				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if err := httpServer.Shutdown(ctx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server")
				}
			}

			return nil
		},
	}
}
