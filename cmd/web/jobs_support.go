package main

import (
	"github.com/yourusername/gym-portal/internal/config"
	"github.com/yourusername/gym-portal/internal/jobs"
	"github.com/yourusername/gym-portal/internal/logging"
	"github.com/yourusername/gym-portal/internal/storage"
)

func setupJobs(cfg *config.Config, contacts *storage.ContactStore, logger logging.Logger) (*jobs.Manager, error) {
	processor := jobs.NewProcessor(contacts, jobs.LogNotifier{Logger: logger.With("component", "notifier")}, logger)
	return jobs.NewManager(cfg.RedisURL, cfg.NotifyConcurrency, processor, logger)
}
