// Package cron runs the nightly maintenance job that removes image blobs no
// catalog record references anymore. Orphans appear when a record is edited
// to point at a different image, or when a delete is interrupted before its
// sweep.
package cron

import (
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/casadecor/portfolio-backend/internal/catalog/localstore"
)

// DefaultSchedule runs the sweep at 03:00 server time.
const DefaultSchedule = "0 3 * * *"

type Sweeper struct {
	local *localstore.Store
	cron  *cron.Cron
	log   *logrus.Entry
}

func NewSweeper(local *localstore.Store) *Sweeper {
	return &Sweeper{
		local: local,
		cron:  cron.New(),
		log:   logrus.WithField("component", "sweeper"),
	}
}

// Start schedules the sweep; an empty schedule falls back to DefaultSchedule.
func (s *Sweeper) Start(schedule string) error {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	if _, err := s.cron.AddFunc(schedule, s.Run); err != nil {
		return err
	}
	s.cron.Start()
	s.log.WithField("schedule", schedule).Info("orphan image sweep scheduled")
	return nil
}

// Stop halts the scheduler; a running sweep finishes first.
func (s *Sweeper) Stop() {
	s.cron.Stop()
}

// Run performs one sweep immediately.
func (s *Sweeper) Run() {
	referenced, err := s.local.ReferencedImageKeys()
	if err != nil {
		s.log.WithError(err).Error("orphan sweep aborted: cannot list referenced images")
		return
	}

	removed, err := s.local.Cleanup(referenced)
	if err != nil {
		s.log.WithError(err).Error("orphan sweep failed")
		return
	}
	if removed > 0 {
		s.log.WithField("removed", removed).Info("orphan images removed")
	}
}
