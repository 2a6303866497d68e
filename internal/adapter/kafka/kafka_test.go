package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/crime-weather-report/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func newTestPublisher(w messageWriter) *Publisher {
	return &Publisher{writer: w, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	temp, rain := 13.4, 42.0
	rec := domain.MergedMonthlyRecord{Month: "2024-05", CrimeCount: 568, AvgTemp: &temp, TotalRain: &rain}

	msg, err := serializeToMessage("run-1", now, rec)
	require.NoError(t, err)

	assert.Equal(t, []byte("2024-05"), msg.Key)
	assert.JSONEq(t, `{"month":"2024-05","crime_count":568,"avg_temp":13.4,"total_rain":42,"avg_wind":null}`, string(msg.Value))
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "month", msg.Headers[0].Key)
	assert.Equal(t, []byte("2024-05"), msg.Headers[0].Value)
	assert.Equal(t, "run_id", msg.Headers[1].Key)
	assert.Equal(t, []byte("run-1"), msg.Headers[1].Value)
	assert.Equal(t, "generated_at", msg.Headers[2].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[2].Value)
}

func TestPublish(t *testing.T) {
	w := &fakeWriter{}
	p := newTestPublisher(w)
	recs := []domain.MergedMonthlyRecord{
		{Month: "2024-01", CrimeCount: 3},
		{Month: "2024-02", CrimeCount: 4},
	}

	require.NoError(t, p.Publish(context.Background(), "run-1", time.Now(), recs))
	require.Len(t, w.msgs, 2)
	assert.Equal(t, []byte("2024-01"), w.msgs[0].Key)
	assert.Equal(t, []byte("2024-02"), w.msgs[1].Key)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublish_Empty(t *testing.T) {
	w := &fakeWriter{err: errors.New("should not be called")}
	require.NoError(t, newTestPublisher(w).Publish(context.Background(), "run-1", time.Now(), nil))
}

func TestPublish_WriteError(t *testing.T) {
	broker := errors.New("broker unavailable")
	w := &fakeWriter{err: broker}

	err := newTestPublisher(w).Publish(context.Background(), "run-1", time.Now(), []domain.MergedMonthlyRecord{{Month: "2024-01", CrimeCount: 1}})
	require.ErrorIs(t, err, broker)
	assert.Contains(t, err.Error(), "publish monthly records")
}
