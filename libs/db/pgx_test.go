package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOptionsDefaults(t *testing.T) {
	o := Options{}.withDefaults()
	assert.Equal(t, int32(10), o.MaxConns)
	assert.Equal(t, int32(1), o.MinConns)
	assert.Equal(t, 30*time.Minute, o.MaxConnLifetime)
	assert.Equal(t, 5*time.Minute, o.MaxConnIdleTime)

	o = Options{MaxConns: 2, MinConns: 5}.withDefaults()
	assert.Equal(t, int32(2), o.MinConns)
}

func TestOpenRejectsBadURL(t *testing.T) {
	_, err := Open(context.Background(), "postgres://%zz", Options{})
	assert.Error(t, err)
}

func TestReadyCheckWithoutPool(t *testing.T) {
	assert.EqualError(t, ReadyCheck(nil)(context.Background()), "db not configured")
}
