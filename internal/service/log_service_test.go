package service

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"Itemizer/internal/model"
	"Itemizer/internal/repository/rdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func itoa(id uint64) string {
	return strconv.FormatUint(id, 10)
}

type failingPublisher struct{ calls int }

func (p *failingPublisher) Publish(context.Context, *model.OrganizationLog) error {
	p.calls++
	return errors.New("broker down")
}

func TestRecordPublishesAndTolerates(t *testing.T) {
	db := newTestDB(t)
	pub := &failingPublisher{}
	logs := NewLogService(db, pub, zaptest.NewLogger(t))

	l, err := logs.Record(context.Background(), 3, []string{"a", "b"})
	require.NoError(t, err)
	assert.NotZero(t, l.ID)
	assert.Equal(t, 1, pub.calls)

	list, err := logs.ListByOrg(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, []string{"a", "b"}, []string(list[0].Contents))
}

func TestLogPurger(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)
	repo := &rdb.LogRepository{DB: db}

	for _, age := range []time.Duration{8 * 24 * time.Hour, 7 * 24 * time.Hour, 6 * 24 * time.Hour, time.Minute} {
		require.NoError(t, repo.Create(ctx, &model.OrganizationLog{
			Contents:       []string{age.String()},
			Occurrence:     now.Add(-age),
			OrganizationID: 1,
		}))
	}

	p := NewLogPurger(db, 0, 0, zaptest.NewLogger(t))
	p.now = func() time.Time { return now }
	n, err := p.PurgeOnce(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	left, err := repo.ListByOrg(ctx, 1)
	require.NoError(t, err)
	require.Len(t, left, 2)
	assert.Equal(t, "1m0s", left[0].Contents[0])
}

func TestLogPurgerRunStops(t *testing.T) {
	db := newTestDB(t)
	p := NewLogPurger(db, time.Hour, 10*time.Millisecond, zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()
	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("purger did not stop")
	}
}
