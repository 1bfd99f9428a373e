// Package di assembles the service from configuration using google/wire.
package di

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"memories-backend/internal/config"
	"memories-backend/internal/infrastructure/observability"
	"memories-backend/internal/infrastructure/persistence/sqlstore"
)

// Container holds the long-lived components the entry points need.
type Container struct {
	Config   *config.Config
	Logger   *zap.Logger
	LogLevel zap.AtomicLevel
	Store    *sqlstore.Store
	Metrics  *observability.Collector
	Router   *chi.Mux
}
