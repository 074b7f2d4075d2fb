package generation

import (
	"github.com/ppiankov/truthslies/internal/engine"
	"github.com/ppiankov/truthslies/internal/model"
)

// NewLocalClient runs generation in process without any network
func NewLocalClient(cfg model.EngineConfig, opts ...engine.Option) Client {
	return engine.New(cfg, opts...)
}
