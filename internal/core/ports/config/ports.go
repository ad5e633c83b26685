package configports

import (
	"context"

	configdomain "vdpm.dev/cli/internal/core/domain/config"
)

// Loader overlays one configuration source onto cfg
type Loader interface {
	Apply(ctx context.Context, cfg *configdomain.Config) error
	Name() string
}

type Validator interface {
	Validate(cfg *configdomain.Config) error
}
