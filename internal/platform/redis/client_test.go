package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voteledger/internal/platform/config"
)

func TestNewWithoutURL(t *testing.T) {
	client, err := New(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New(context.Background(), config.RedisConfig{URL: "http://not-redis"})
	assert.ErrorContains(t, err, "parse redis URL")
}
