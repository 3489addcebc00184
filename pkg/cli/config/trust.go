package config

import (
	"log/slog"

	"github.com/secmon-lab/vanguard/pkg/domain/interfaces"
	"github.com/secmon-lab/vanguard/pkg/infra/trust"
	"github.com/urfave/cli/v3"
)

type Trust struct {
	url        string
	failClosed bool
}

func (x *Trust) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "trust-url",
			Usage:       "Base URL of the trust verification service",
			Category:    "Trust",
			Destination: &x.url,
			Sources:     cli.EnvVars("VANGUARD_TRUST_URL"),
		},
		&cli.BoolFlag{
			Name:        "trust-fail-closed",
			Usage:       "Deny uploads when the trust service is unreachable",
			Category:    "Trust",
			Destination: &x.failClosed,
			Sources:     cli.EnvVars("VANGUARD_TRUST_FAIL_CLOSED"),
		},
	}
}

func (x *Trust) Enabled() bool {
	return x.url != ""
}

func (x *Trust) FailClosed() bool {
	return x.failClosed
}

func (x *Trust) NewClient() interfaces.TrustClient {
	if !x.Enabled() {
		return nil
	}

	return trust.New(x.url)
}

func (x *Trust) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("URL", x.url),
		slog.Bool("failClosed", x.failClosed),
	)
}
