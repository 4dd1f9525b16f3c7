package main

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/iwvelando/lever-planner/internal/backend"
	"github.com/iwvelando/lever-planner/internal/config"
	"github.com/iwvelando/lever-planner/internal/planner"
)

// newSession builds a planning session from the plan. With a backend URL the
// offices and baseline come from the backend; otherwise from the plan's
// offices and baseline file. The returned client is nil when offline.
func newSession(ctx context.Context, c *config.Configuration, log *zap.Logger) (*planner.Controller, backend.Client, error) {
	ctrl := planner.NewController(
		planner.WithLogger(log),
		planner.WithRoles(c.Planner.Roles),
		planner.WithSeedRole(c.Planner.SeedRole),
	)

	if c.Backend.URL != "" {
		client := backend.NewClient(c.Backend.URL,
			backend.WithLogger(log),
			backend.WithBaselinePath(c.Backend.BaselinePath),
			backend.WithTimeout(time.Duration(c.Backend.TimeoutSeconds)*time.Second),
			backend.WithRateLimit(c.Backend.RequestsPerSecond),
		)
		if err := ctrl.Bootstrap(ctx, client); err != nil {
			if !errors.Is(err, planner.ErrBaselineUnavailable) {
				return nil, nil, err
			}
			log.Warn("continuing without baseline, levers start from defaults",
				zap.String("op", "main.newSession"),
				zap.Error(err),
			)
		}
		return ctrl, client, nil
	}

	list, err := c.OfficeList()
	if err != nil {
		return nil, nil, err
	}
	ctrl.SetOffices(list)

	data, err := c.BaselineData()
	if err != nil {
		return nil, nil, err
	}
	if data != nil {
		ctrl.SeedBaseline(data)
	}
	return ctrl, nil, nil
}
