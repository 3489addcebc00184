package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vanguard/pkg/domain/interfaces"
	"github.com/secmon-lab/vanguard/pkg/domain/types"
	"github.com/secmon-lab/vanguard/pkg/infra/gcs"
	"github.com/secmon-lab/vanguard/pkg/infra/s3"
	"github.com/urfave/cli/v3"
)

// Storage selects the object-store backend for manifest fetch and bundle
// publication. "s3" covers any S3-compatible endpoint; "gcs" uses application
// default credentials.
type Storage struct {
	backend string

	s3Endpoint  string
	s3Region    string
	s3AccessKey string
	s3SecretKey types.StorageSecretKey `masq:"secret"`
	s3UseSSL    bool
}

func (x *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "storage-backend",
			Usage:       "Object storage backend [s3|gcs]",
			Category:    "Storage",
			Destination: &x.backend,
			Sources:     cli.EnvVars("VANGUARD_STORAGE_BACKEND"),
		},
		&cli.StringFlag{
			Name:        "s3-endpoint",
			Usage:       "S3-compatible endpoint (host:port)",
			Category:    "Storage",
			Destination: &x.s3Endpoint,
			Sources:     cli.EnvVars("VANGUARD_S3_ENDPOINT"),
		},
		&cli.StringFlag{
			Name:        "s3-region",
			Usage:       "S3 region",
			Category:    "Storage",
			Value:       "us-east-1",
			Destination: &x.s3Region,
			Sources:     cli.EnvVars("VANGUARD_S3_REGION"),
		},
		&cli.StringFlag{
			Name:        "s3-access-key",
			Usage:       "S3 access key",
			Category:    "Storage",
			Destination: &x.s3AccessKey,
			Sources:     cli.EnvVars("VANGUARD_S3_ACCESS_KEY"),
		},
		&cli.StringFlag{
			Name:        "s3-secret-key",
			Usage:       "S3 secret key",
			Category:    "Storage",
			Destination: (*string)(&x.s3SecretKey),
			Sources:     cli.EnvVars("VANGUARD_S3_SECRET_KEY"),
		},
		&cli.BoolFlag{
			Name:        "s3-use-ssl",
			Usage:       "Use TLS for the S3 endpoint",
			Category:    "Storage",
			Value:       true,
			Destination: &x.s3UseSSL,
			Sources:     cli.EnvVars("VANGUARD_S3_USE_SSL"),
		},
	}
}

func (x *Storage) Enabled() bool {
	return x.backend != ""
}

func (x *Storage) NewClient(ctx context.Context) (interfaces.ObjectStorage, error) {
	switch x.backend {
	case "":
		return nil, nil

	case "s3":
		if x.s3Endpoint == "" {
			return nil, goerr.New("s3-endpoint is required for the s3 backend")
		}
		client, err := s3.New(x.s3Endpoint, x.s3Region, x.s3AccessKey, x.s3SecretKey, x.s3UseSSL)
		if err != nil {
			return nil, err
		}
		return client, nil

	case "gcs":
		client, err := gcs.New(ctx)
		if err != nil {
			return nil, err
		}
		return client, nil

	default:
		return nil, goerr.New("unknown storage backend", goerr.V("backend", x.backend))
	}
}

func (x *Storage) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("backend", x.backend),
		slog.Any("s3Endpoint", x.s3Endpoint),
		slog.Any("s3Region", x.s3Region),
		slog.Any("s3AccessKey", x.s3AccessKey),
		slog.Int("s3SecretKey.len", len(x.s3SecretKey)),
		slog.Bool("s3UseSSL", x.s3UseSSL),
	)
}
