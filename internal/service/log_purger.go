package service

import (
	"context"
	"time"

	"Itemizer/internal/repository/rdb"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	DefaultLogRetention = 7 * 24 * time.Hour
	DefaultPurgeEvery   = 24 * time.Hour
)

// LogPurger deletes organization logs once they leave the retention window.
type LogPurger struct {
	repo      *rdb.LogRepository
	retention time.Duration
	interval  time.Duration
	now       func() time.Time
	log       *zap.Logger
}

func NewLogPurger(db *gorm.DB, retention, interval time.Duration, log *zap.Logger) *LogPurger {
	if retention <= 0 {
		retention = DefaultLogRetention
	}
	if interval <= 0 {
		interval = DefaultPurgeEvery
	}
	return &LogPurger{
		repo:      &rdb.LogRepository{DB: db},
		retention: retention,
		interval:  interval,
		now:       time.Now,
		log:       log,
	}
}

// Run purges once per interval until ctx is done.
func (p *LogPurger) Run(ctx context.Context) {
	t := time.NewTicker(p.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := p.PurgeOnce(ctx); err != nil {
				p.log.Error("purge organization logs", zap.Error(err))
			}
		}
	}
}

func (p *LogPurger) PurgeOnce(ctx context.Context) (int64, error) {
	cutoff := p.now().Add(-p.retention)
	n, err := p.repo.DeleteUpTo(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	p.log.Info("purged organization logs", zap.Int64("deleted", n), zap.Time("cutoff", cutoff))
	return n, nil
}
