package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hlsnap/internal/domain/model"
)

func sampleReport() *model.Report {
	r := &model.Report{TimestampUTC: "2024-05-01T12:00:00Z"}
	r.FundingRates.TopPositive = []model.FundingEntry{{Asset: "BTC", Rate: 0.0001}}
	r.FundingRates.TopNegative = []model.FundingEntry{{Asset: "ETH", Rate: -0.0002}}
	r.OpenInterest.TopByUSDValue = []model.OpenInterestEntry{{Asset: "BTC", OIUSD: 1e9}}
	r.PriceMovers24h.TopPositiveChange = []model.PriceMoveEntry{{Asset: "SOL", ChangePct: 4.2}}
	return r
}

func TestPublisher_Publish(t *testing.T) {
	db, mock := redismock.NewClientMock()
	p := New(db, "")
	assert.Equal(t, DefaultChannel, p.Channel())

	r := sampleReport()
	want, err := json.Marshal(Envelope{RunID: "run-1", Report: r})
	require.NoError(t, err)

	mock.ExpectPublish(DefaultChannel, string(want)).SetVal(1)

	require.NoError(t, p.Publish(context.Background(), "run-1", r))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPublisher_PublishError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	p := New(db, "custom:chan")

	r := sampleReport()
	want, err := json.Marshal(Envelope{RunID: "run-2", Report: r})
	require.NoError(t, err)

	mock.ExpectPublish("custom:chan", string(want)).SetErr(errors.New("connection refused"))

	err = p.Publish(context.Background(), "run-2", r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPublisher_NilReport(t *testing.T) {
	db, _ := redismock.NewClientMock()
	assert.Error(t, New(db, "x").Publish(context.Background(), "run", nil))
}

func TestEnvelopeShape(t *testing.T) {
	b, err := json.Marshal(Envelope{RunID: "abc", Report: sampleReport()})
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "abc", m["run_id"])
	report, ok := m["report"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "2024-05-01T12:00:00Z", report["timestamp_utc"])
}
