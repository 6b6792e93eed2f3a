package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestGetHit(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := NewService(client)

	stored, _ := json.Marshal(payload{Name: "imax", Count: 3})
	mock.ExpectGet("screenings:detail:abc").SetVal(string(stored))

	var got payload
	err := svc.Get(context.Background(), "screenings:detail:abc", &got)
	require.NoError(t, err)
	assert.Equal(t, "imax", got.Name)
	assert.Equal(t, 3, got.Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMiss(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := NewService(client)

	mock.ExpectGet("missing").RedisNil()

	var got payload
	err := svc.Get(context.Background(), "missing", &got)
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSet(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := NewService(client)

	value := payload{Name: "evening", Count: 1}
	data, _ := json.Marshal(value)
	mock.ExpectSet("key", data, time.Minute).SetVal("OK")

	err := svc.Set(context.Background(), "key", value, time.Minute)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := NewService(client)

	mock.ExpectDel("key").SetVal(1)

	require.NoError(t, svc.Delete(context.Background(), "key"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrSetFallsThroughToFetcher(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := NewService(client)

	value := payload{Name: "fetched", Count: 7}
	data, _ := json.Marshal(value)
	mock.ExpectGet("key").RedisNil()
	mock.ExpectSet("key", data, time.Minute).SetVal("OK")

	var got payload
	err := svc.GetOrSet(context.Background(), "key", time.Minute, func() (interface{}, error) {
		return value, nil
	}, &got)
	require.NoError(t, err)
	assert.Equal(t, value, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKeyBuilders(t *testing.T) {
	assert.Equal(t, "seats:avail:s1", AvailabilityKey("s1"))
	assert.Equal(t, "screenings:detail:s1", ScreeningKey("s1"))
}
