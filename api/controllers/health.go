package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/tubeboost/storefront-backend/api/responses"
	"github.com/tubeboost/storefront-backend/pkg/config"
	pkgerrors "github.com/tubeboost/storefront-backend/pkg/errors"
	"github.com/tubeboost/storefront-backend/pkg/logger"
)

const envHeader = "X-TubeBoost-Env"

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the dependencies a checkout cannot run without.
func HealthReady(cfg *config.Config, logg *logger.Logger, db, redis, shop pinger) http.HandlerFunc {
	deps := map[string]pinger{
		"database":    db,
		"redis":       redis,
		"woocommerce": shop,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		statuses := map[string]string{}
		failed := false
		for name, dep := range deps {
			if dep == nil {
				statuses[name] = "unconfigured"
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				statuses[name] = "down"
				failed = true
				if logg != nil {
					lctx := logg.WithField(ctx, "dependency", name)
					logg.Error(lctx, "readiness ping failed", err)
				}
				continue
			}
			statuses[name] = "ok"
		}

		if failed {
			err := pkgerrors.New(pkgerrors.CodeDependency, "one or more dependencies are unavailable").
				WithDetails(statuses)
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "dependencies": statuses})
	}
}
