package store

import (
	"fmt"

	"github.com/candleco/callback-service/internal/config"
	"github.com/candleco/callback-service/internal/usecase"
)

// NewLeadRepository picks the backend from configuration. Callers only ever
// see the usecase.LeadRepository contract.
func NewLeadRepository(cfg *config.Config) (usecase.LeadRepository, error) {
	switch cfg.StoreBackend {
	case "redis":
		client, err := NewRedisClient(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, err
		}
		return NewRedisLeadRepository(client), nil
	case "file":
		return NewFileLeadRepository(cfg.LeadsFilePath)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
