package providers

import (
	"context"

	"github.com/zatekoja/carefinder/backend/internal/domain/entities"
)

// RegistryProvider loads the static facility registry
type RegistryProvider interface {
	// Load reads the registry from its source. Implementations return a
	// DATA_UNAVAILABLE AppError when the source cannot be read.
	Load(ctx context.Context) (*entities.Registry, error)
}
