package service

import (
	"context"
	"encoding/json"
	"time"

	"Itemizer/internal/model"
	"Itemizer/internal/pkg"
	"Itemizer/internal/repository/rdb"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LogPublisher forwards persisted organization logs to other systems.
type LogPublisher interface {
	Publish(ctx context.Context, l *model.OrganizationLog) error
}

// LogService writes organization logs and hands them to a publisher.
type LogService struct {
	db        *gorm.DB
	publisher LogPublisher
	log       *zap.Logger
}

func NewLogService(db *gorm.DB, publisher LogPublisher, log *zap.Logger) *LogService {
	if publisher == nil {
		publisher = &ZapLogPublisher{Log: log}
	}
	return &LogService{db: db, publisher: publisher, log: log}
}

// Record persists one log and publishes it.
func (s *LogService) Record(ctx context.Context, orgID uint64, contents []string) (*model.OrganizationLog, error) {
	l, err := s.Write(ctx, s.db, orgID, contents)
	if err != nil {
		return nil, err
	}
	s.Publish(ctx, l)
	return l, nil
}

// Write persists a log with tx and does not publish it.
func (s *LogService) Write(ctx context.Context, tx *gorm.DB, orgID uint64, contents []string) (*model.OrganizationLog, error) {
	l := &model.OrganizationLog{Contents: contents, OrganizationID: orgID}
	if err := (&rdb.LogRepository{DB: tx}).Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// Publish is best effort; failures are only logged.
func (s *LogService) Publish(ctx context.Context, logs ...*model.OrganizationLog) {
	if s == nil {
		return
	}
	for _, l := range logs {
		if err := s.publisher.Publish(ctx, l); err != nil {
			s.log.Warn("publish organization log", zap.Uint64("organization_id", l.OrganizationID), zap.Error(err))
		}
	}
}

func (s *LogService) ListByOrg(ctx context.Context, orgID uint64) ([]model.OrganizationLog, error) {
	return (&rdb.LogRepository{DB: s.db}).ListByOrg(ctx, orgID)
}

// ZapLogPublisher is used when no broker is configured.
type ZapLogPublisher struct {
	Log *zap.Logger
}

func (p *ZapLogPublisher) Publish(_ context.Context, l *model.OrganizationLog) error {
	p.Log.Debug("organization log",
		zap.Uint64("organization_id", l.OrganizationID),
		zap.Strings("contents", l.Contents))
	return nil
}

type logEvent struct {
	ID             uint64    `json:"id"`
	OrganizationID uint64    `json:"organization_id"`
	Contents       []string  `json:"contents"`
	Occurrence     time.Time `json:"occurrence"`
}

// KafkaLogPublisher writes each log as a JSON message keyed by organization.
type KafkaLogPublisher struct {
	Producer *pkg.KafkaProducer
}

func (p *KafkaLogPublisher) Publish(ctx context.Context, l *model.OrganizationLog) error {
	value, err := json.Marshal(logEvent{
		ID:             l.ID,
		OrganizationID: l.OrganizationID,
		Contents:       l.Contents,
		Occurrence:     l.Occurrence,
	})
	if err != nil {
		return err
	}
	return p.Producer.Send(ctx, pkg.MakeKeyFromID(l.OrganizationID), value)
}
