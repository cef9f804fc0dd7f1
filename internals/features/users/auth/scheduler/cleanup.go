package scheduler

import (
	"context"
	"time"

	"gerejaku_backend/internals/configs"
	kioskRepo "gerejaku_backend/internals/features/churches/kiosk/repository"
	"gerejaku_backend/internals/features/users/auth/repository"
	helperAuth "gerejaku_backend/internals/helpers/auth"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Job is one housekeeping step; it reports how many rows it removed.
type Job struct {
	Name string
	Run  func(ctx context.Context) (int64, error)
}

// HousekeepingJobs purges expired blacklist entries, dead refresh tokens and
// closed kiosk sessions past the retention window.
func HousekeepingJobs(db *gorm.DB, retention time.Duration) []Job {
	authRepo := repository.NewAuthRepository(db)
	kiosk := kioskRepo.NewKioskRepository(db)

	return []Job{
		{Name: "token_blacklist", Run: func(ctx context.Context) (int64, error) {
			return helperAuth.PurgeExpiredBlacklist(ctx, db)
		}},
		{Name: "refresh_tokens", Run: func(ctx context.Context) (int64, error) {
			return authRepo.PurgeRefreshTokens(ctx, time.Now().Add(-retention))
		}},
		{Name: "kiosk_sessions", Run: func(ctx context.Context) (int64, error) {
			return kiosk.PruneClosedBefore(ctx, time.Now().Add(-retention))
		}},
	}
}

// RunJobs runs every job even when an earlier one fails and returns the
// per-job row counts of the ones that succeeded.
func RunJobs(ctx context.Context, log *logrus.Logger, jobs []Job) map[string]int64 {
	out := make(map[string]int64, len(jobs))
	for _, j := range jobs {
		n, err := j.Run(ctx)
		if err != nil {
			log.WithError(err).WithField("job", j.Name).Error("[CLEANUP ERROR] housekeeping job failed")
			continue
		}
		out[j.Name] = n
		if n > 0 {
			log.WithFields(logrus.Fields{"job": j.Name, "rows": n}).Info("[CLEANUP] rows removed")
		}
	}
	return out
}

// StartHousekeeping schedules the cleanup jobs. Stop the returned cron on shutdown.
func StartHousekeeping(db *gorm.DB) (*cron.Cron, error) {
	schedule := configs.GetEnv("CLEANUP_CRON", "@every 6h")
	retention := time.Duration(configs.GetEnvInt("CLEANUP_RETENTION_DAYS", 30)) * 24 * time.Hour
	jobs := HousekeepingJobs(db, retention)

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Minute)
		defer cancel()
		RunJobs(ctx, configs.Log, jobs)
	}); err != nil {
		return nil, err
	}
	configs.Log.WithFields(logrus.Fields{"schedule": schedule, "retention": retention.String()}).
		Info("[CLEANUP] housekeeping scheduled")
	c.Start()
	return c, nil
}
