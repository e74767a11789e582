package cron

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/edunest/school-back/internal/activity"
	"github.com/edunest/school-back/internal/config"
	"github.com/edunest/school-back/internal/logger"
)

// Uploads are deleted by the import handler itself; the sweep only
// catches files orphaned by crashes mid-request.
const staleUploadAge = 24 * time.Hour

// StartJobs wires the nightly maintenance: trimming old activity log
// rows and sweeping orphaned upload files.
func StartJobs(cfg *config.Config, sink *activity.Sink) *cron.Cron {
	log := logger.With("cron")
	c := cron.New()

	c.AddFunc("@daily", func() {
		retention := time.Duration(cfg.ActivityRetentionDays) * 24 * time.Hour
		n, err := sink.Trim(context.Background(), retention)
		if err != nil {
			log.Error().Err(err).Msg("activity log trim failed")
			return
		}
		log.Info().Int64("removed", n).Msg("activity log trimmed")
	})

	c.AddFunc("@daily", func() {
		removed := sweepStaleUploads(cfg.UploadDir)
		log.Info().Int("removed", removed).Msg("stale uploads swept")
	})

	c.Start()
	return c
}

func sweepStaleUploads(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	removed := 0
	cutoff := time.Now().Add(-staleUploadAge)
	for _, e := range entries {
		info, err := e.Info()
		if err != nil || info.IsDir() {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if os.Remove(filepath.Join(dir, e.Name())) == nil {
				removed++
			}
		}
	}
	return removed
}
