package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gots/slice"
	"github.com/secmon-lab/vanguard/pkg/cli/config"
	"github.com/secmon-lab/vanguard/pkg/domain/interfaces"
	"github.com/secmon-lab/vanguard/pkg/domain/model"
	"github.com/secmon-lab/vanguard/pkg/domain/types"
	"github.com/secmon-lab/vanguard/pkg/infra"
	"github.com/secmon-lab/vanguard/pkg/infra/scanner"
	"github.com/secmon-lab/vanguard/pkg/usecase"
	"github.com/secmon-lab/vanguard/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func scanCommand() *cli.Command {
	var (
		dir          string
		profile      string
		manifestFile string
		runnerPath   string
		artifactRoot string
		workspaceID  string
		componentID  string
		assessmentID string

		bigQuery config.BigQuery
	)

	return &cli.Command{
		Name:    "scan",
		Aliases: []string{"sc"},
		Usage:   "Scan a local directory and write the artifact bundle",
		Flags: slice.Flatten([]cli.Flag{
			&cli.StringFlag{
				Name:        "dir",
				Aliases:     []string{"d"},
				Usage:       "Path to directory to scan",
				Value:       ".",
				Destination: &dir,
			},
			&cli.StringFlag{
				Name:        "profile",
				Aliases:     []string{"p"},
				Usage:       "Assessment profile name",
				Value:       "light",
				Sources:     cli.EnvVars("VANGUARD_PROFILE"),
				Destination: &profile,
			},
			&cli.StringFlag{
				Name:        "manifest-file",
				Usage:       "Path to manifest file (generated from profile if empty)",
				Sources:     cli.EnvVars("VANGUARD_MANIFEST_FILE"),
				Destination: &manifestFile,
			},
			&cli.StringFlag{
				Name:        "runner-path",
				Usage:       "Path to scan runner binary (built-in sample scanner if empty)",
				Sources:     cli.EnvVars("VANGUARD_RUNNER_PATH"),
				Destination: &runnerPath,
			},
			&cli.StringFlag{
				Name:        "artifact-root",
				Usage:       "Directory for scan bundles",
				Value:       "artifacts",
				Sources:     cli.EnvVars("VANGUARD_ARTIFACT_ROOT"),
				Destination: &artifactRoot,
			},
			&cli.StringFlag{
				Name:        "workspace-id",
				Usage:       "Workspace ID",
				Value:       "local",
				Destination: &workspaceID,
			},
			&cli.StringFlag{
				Name:        "component-id",
				Usage:       "Component ID (directory name if empty)",
				Destination: &componentID,
			},
			&cli.StringFlag{
				Name:        "assessment-id",
				Usage:       "Assessment ID",
				Value:       "local",
				Destination: &assessmentID,
			},
		}, bigQuery.Flags()),
		Action: func(ctx context.Context, c *cli.Command) error {
			absDir, err := filepath.Abs(dir)
			if err != nil {
				return goerr.Wrap(err, "failed to resolve scan directory", goerr.V("dir", dir))
			}
			if componentID == "" {
				componentID = filepath.Base(absDir)
			}

			manifest := model.ManifestSource{}
			if manifestFile != "" {
				raw, err := os.ReadFile(filepath.Clean(manifestFile))
				if err != nil {
					return goerr.Wrap(err, "failed to read manifest file", goerr.V("path", manifestFile))
				}
				manifest.Inline = string(raw)
			} else {
				manifest.Inline = fmt.Sprintf(`{"profiles":[{"name":%q}]}`, profile)
			}

			req := &model.ScanRequest{
				WorkspaceID:  types.WorkspaceID(workspaceID),
				ComponentID:  types.ComponentID(componentID),
				AssessmentID: types.AssessmentID(assessmentID),
				Profile:      types.ProfileName(profile),
				RequestedBy:  "cli",
				Source: model.SourceDescriptor{
					Kind:    types.SourceKindDirectory,
					Locator: absDir,
				},
				Manifest: manifest,
			}

			logging.Default().Info("starting scan",
				slog.String("dir", absDir),
				slog.String("profile", profile),
				slog.Any("bigquery", &bigQuery),
			)

			var scanClient interfaces.Scanner = scanner.NewSample()
			if runnerPath != "" {
				scanClient = scanner.NewExec(runnerPath)
			}

			infraOptions := []infra.Option{
				infra.WithScanner(scanClient),
			}
			if bqClient, err := bigQuery.NewClient(ctx); err != nil {
				return err
			} else if bqClient != nil {
				infraOptions = append(infraOptions, infra.WithAnalytics(bqClient))
			}

			uc := usecase.New(infra.New(infraOptions...),
				usecase.WithArtifactRoot(artifactRoot),
				usecase.WithWorkers(1),
			)

			job, err := uc.SubmitScan(ctx, req)
			if err != nil {
				return err
			}

			if err := waitForJob(uc, job.TestID); err != nil {
				return err
			}

			// the job record is finalized shortly after the terminal event
			final, err := uc.GetJob(ctx, job.TestID)
			if err != nil {
				return err
			}
			for i := 0; i < 100 && !final.Status.Terminal(); i++ {
				time.Sleep(10 * time.Millisecond)
				if final, err = uc.GetJob(ctx, job.TestID); err != nil {
					return err
				}
			}

			out, err := json.MarshalIndent(final, "", "  ")
			if err != nil {
				return goerr.Wrap(err, "failed to marshal scan result")
			}
			fmt.Println(string(out))

			if final.Status != types.JobStatusSucceeded {
				return goerr.New("scan failed", goerr.V("test_id", final.TestID), goerr.V("errors", final.Errors))
			}

			return nil
		},
	}
}

// waitForJob drains the job's event stream until the terminal event.
func waitForJob(uc interfaces.UseCase, id types.TestID) error {
	logStream, ok := uc.Stream(id)
	if !ok {
		return goerr.Wrap(types.ErrJobNotFound, "no event stream for scan", goerr.V("test_id", id))
	}

	replay, live := logStream.Attach()
	defer logStream.Detach(live)

	for _, event := range replay {
		if event.Type == model.EventTypeTerminal {
			return nil
		}
	}
	for range live {
	}

	return nil
}
