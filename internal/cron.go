package internal

import (
	"log"

	"github.com/robfig/cron/v3"
	"github.com/rm-hull/pixconv/internal/config"
)

// StartCron sweeps the inbox on the given cron schedule, e.g. "*/5 * * * *".
func StartCron(schedule string, cfg config.Config) (*cron.Cron, error) {
	c := cron.New()

	log.Printf("Starting CRON job to convert files (schedule=%s)", schedule)
	_, err := c.AddFunc(schedule, func() {
		if errs := Sweep(cfg); len(errs) > 0 {
			log.Printf("Errors occurred: %v", errs)
		}
	})

	if err != nil {
		return nil, err
	}

	c.Start()
	return c, nil
}
