package internal

import (
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rm-hull/pixconv/internal/config"
)

// NewScheduler sweeps the inbox once straight away, then every interval.
func NewScheduler(every time.Duration, cfg config.Config) (gocron.Scheduler, error) {
	if errs := Sweep(cfg); len(errs) > 0 {
		log.Printf("Initial sweep had %d errors: %v", len(errs), errs)
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(func() {
			if errs := Sweep(cfg); len(errs) > 0 {
				log.Printf("Errors occurred: %v", errs)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	scheduler.Start()
	return scheduler, nil
}

// Sweep converts whatever is waiting in the configured inbox.
func Sweep(cfg config.Config) []error {
	layout, err := cfg.Layout()
	if err != nil {
		return []error{err}
	}
	opts, err := cfg.EncodeOptions()
	if err != nil {
		return []error{err}
	}

	conv, err := NewConverter(cfg.Inbox, cfg.Pattern, cfg.Workers, layout, opts)
	if err != nil {
		return []error{fmt.Errorf("failed to create converter: %w", err)}
	}
	return conv.Run()
}
