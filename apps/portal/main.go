package main

import (
	"context"
	"fmt"
	"log"

	dig_container "github.com/tusthegr8/campus-companion/apps/portal/di/dig"
	echoportal "github.com/tusthegr8/campus-companion/apps/portal/echo"
	"github.com/tusthegr8/campus-companion/apps/portal/jobs"
	appfs "github.com/tusthegr8/campus-companion/assets"
	"github.com/tusthegr8/campus-companion/core"
	inmemdb "github.com/tusthegr8/campus-companion/storage/inmem"
)

func main() {
	c := dig_container.New()

	must(c.Invoke(func(
		conf *core.Config,
		logger core.Logger,
		sessions *inmemdb.SessionRegistry,
		server *echoportal.Server,
	) {
		// =========================================================================
		// Initialize App

		logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))

		core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, logger)

		defer logger.Info("Application stopped")

		// =========================================================================
		// Start Session Monitor

		ctx, cancel := context.WithCancel(context.Background())
		monitorDone := jobs.StartSessionMonitor(ctx, conf, sessions, logger)
		defer func() {
			cancel()
			<-monitorDone
		}()

		// =========================================================================
		// Start Portal Service

		go func() {
			logger.Info(fmt.Sprintf("Portal listening on %s", conf.Server.Address))
			server.Start()
		}()

		// =========================================================================
		// Shutdown

		select {
		case err := <-server.Errors():
			logger.Error(fmt.Sprintf("server error: %v", err), err)

		case sig := <-server.ShutdownSignal():
			logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

			// give outstanding requests a deadline for completion
			shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
			defer cancelShutdown()

			// asking listener to shut down and shed load
			if err := server.Shutdown(shutdownCtx); err != nil {
				logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

				if err = server.Close(); err != nil {
					logger.Error(fmt.Sprintf("could not force stop server: %v", err), err)
				}
			}
		}
	}))
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
