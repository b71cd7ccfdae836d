package scheduler

import (
	"context"

	"github.com/Amvnn/QuickShare/internal/registry"
	"github.com/mdouchement/logger"
	"github.com/robfig/cron/v3"
)

// A Controller is an Iversion Of Control pattern used to init the scheduler package.
type Controller struct {
	Logger        logger.Logger
	Registry      *registry.Registry
	Specification string
}

// Start launches the reaper asynchronously. A trigger firing while the
// previous sweep still runs is skipped; a manual sweep may overlap safely.
func Start(c Controller) *cron.Cron {
	cron := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DiscardLogger),
	))

	log := c.Logger.WithPrefix("[reaper]")

	_, err := cron.AddFunc(c.Specification, func() {
		report, err := c.Registry.Sweep(context.Background())
		if err != nil {
			log.Error(err)
			return
		}

		if report.Deleted > 0 || report.Errors > 0 {
			log.Infof("Swept %d expired files, %d errors", report.Deleted, report.Errors)
		}
	})
	if err != nil {
		panic(err)
	}
	log.Info("Expiry sweep task registred")

	cron.Start()
	log.Info("Scheduler is running")

	return cron
}
