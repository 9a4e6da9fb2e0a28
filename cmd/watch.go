package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rm-hull/pixconv/internal"
	"github.com/rm-hull/pixconv/internal/config"
)

// Watch converts new raw captures arriving in cfg.Inbox, either on a cron
// schedule or at a fixed interval, until interrupted.
func Watch(cfg config.Config, every time.Duration, schedule string) error {
	internal.ShowVersion()
	internal.UserInfo()
	internal.EnvironmentVars("PIXCONV_")

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.Inbox, 0755); err != nil {
		return fmt.Errorf("failed to create inbox: %w", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	switch {
	case schedule != "":
		c, err := internal.StartCron(schedule, cfg)
		if err != nil {
			return fmt.Errorf("failed to start cron: %w", err)
		}
		<-stop
		<-c.Stop().Done()

	case every > 0:
		sched, err := internal.NewScheduler(every, cfg)
		if err != nil {
			return err
		}
		<-stop
		if err := sched.Shutdown(); err != nil {
			return fmt.Errorf("failed to shutdown scheduler: %w", err)
		}

	default:
		return errors.New("either --every or --cron is required")
	}

	log.Println("Stopped watching", cfg.Inbox)
	return nil
}
