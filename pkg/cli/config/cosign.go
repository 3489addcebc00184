package config

import (
	"log/slog"

	"github.com/secmon-lab/vanguard/pkg/domain/interfaces"
	"github.com/secmon-lab/vanguard/pkg/domain/types"
	"github.com/secmon-lab/vanguard/pkg/infra/cosign"
	"github.com/urfave/cli/v3"
)

type Cosign struct {
	path     string
	keyRef   types.CosignKeyRef
	password types.CosignKeyPassword `masq:"secret"`
}

func (x *Cosign) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "cosign-path",
			Usage:       "Path to cosign binary",
			Category:    "Cosign",
			Value:       "cosign",
			Destination: &x.path,
			Sources:     cli.EnvVars("VANGUARD_COSIGN_PATH"),
		},
		&cli.StringFlag{
			Name:        "cosign-key-ref",
			Usage:       "Cosign key reference (file path or KMS URI)",
			Category:    "Cosign",
			Destination: (*string)(&x.keyRef),
			Sources:     cli.EnvVars("VANGUARD_COSIGN_KEY_REF"),
		},
		&cli.StringFlag{
			Name:        "cosign-key-password",
			Usage:       "Cosign key password",
			Category:    "Cosign",
			Destination: (*string)(&x.password),
			Sources:     cli.EnvVars("VANGUARD_COSIGN_KEY_PASSWORD"),
		},
	}
}

func (x *Cosign) Enabled() bool {
	return x.keyRef != ""
}

// NewClient returns nil when no key is configured; signing then degrades to
// digest-only markers.
func (x *Cosign) NewClient() interfaces.Cosign {
	if !x.Enabled() {
		return nil
	}

	return cosign.New(x.path, x.keyRef, x.password)
}

func (x *Cosign) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("path", x.path),
		slog.Any("keyRef", x.keyRef),
		slog.Int("password.len", len(x.password)),
	)
}
