package polygon

import (
	"testing"
	"time"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/budydeveloper/crypto-dataset/internal/model"
	"github.com/budydeveloper/crypto-dataset/internal/provider"
)

func TestNewRequiresKey(t *testing.T) {
	_, err := New("", provider.Limits{})
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	p, err := New("key", provider.Limits{})
	require.NoError(t, err)
	assert.Equal(t, "polygon", p.GetName())
	assert.True(t, provider.Supports(p, "90m"))
	assert.False(t, provider.Supports(p, "2m"))
}

func TestAggsParams(t *testing.T) {
	iv, err := model.ParseInterval("90m")
	require.NoError(t, err)
	from := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)

	params, err := aggsParams(provider.Query{Symbol: "AAPL", Interval: iv, From: from, To: from.AddDate(0, 0, 1), Limit: 1})
	require.NoError(t, err)
	require.NotNil(t, params)
	assert.Equal(t, "AAPL", params.Ticker)
	assert.Equal(t, 90, params.Multiplier)
	assert.Equal(t, models.Minute, params.Timespan)
	assert.Equal(t, from, time.Time(params.From))
	assert.Equal(t, from.AddDate(0, 0, 1).Add(-time.Millisecond), time.Time(params.To))
	require.NotNil(t, params.Limit)
	assert.Equal(t, 1, *params.Limit)

	params, err = aggsParams(provider.Query{Symbol: "AAPL", Interval: iv, From: from, To: from})
	require.NoError(t, err)
	assert.Nil(t, params)

	bad, err := model.ParseInterval("2m")
	require.NoError(t, err)
	_, err = aggsParams(provider.Query{Symbol: "AAPL", Interval: bad, From: from, To: from.AddDate(0, 0, 1)})
	assert.ErrorIs(t, err, provider.ErrUnsupportedInterval)
}

func TestToCandle(t *testing.T) {
	ts := time.Date(2023, 1, 3, 14, 30, 0, 0, time.UTC)
	c := toCandle(models.Agg{
		Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 1200, Transactions: 9,
		Timestamp: models.Millis(ts),
	})
	assert.Equal(t, model.Candle{Time: ts, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 1200, Trades: 9}, c)
}

func TestEveryPageIsRateLimited(t *testing.T) {
	p, err := New("key", provider.Limits{RequestsPerSecond: 2})
	require.NoError(t, err)
	_, ok := p.client.HTTP.GetClient().Transport.(*provider.RateLimitedTransport)
	assert.True(t, ok, "limiter must wrap the transport used for next_url pages")
}

func TestEveryAdvertisedIntervalHasSpan(t *testing.T) {
	p, err := New("key", provider.Limits{})
	require.NoError(t, err)
	for _, name := range p.Intervals() {
		_, ok := spans[name]
		assert.True(t, ok, name)
	}
}
