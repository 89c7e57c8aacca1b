package producer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lettings/internal/platform/config"
)

func TestNew_RequiresBrokers(t *testing.T) {
	_, err := New(config.KafkaConfig{}, nil)
	require.Error(t, err)
}

func TestProduce_UnreachableBrokerRespectsContext(t *testing.T) {
	p, err := New(config.KafkaConfig{Brokers: "127.0.0.1:1", Acks: "1", Retries: 0}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	err = p.Produce(ctx, &Message{Topic: "lettings.events", Value: []byte("{}")})
	require.Error(t, err)
}

func TestProduce_AfterClose(t *testing.T) {
	p, err := New(config.KafkaConfig{Brokers: "127.0.0.1:1"}, nil)
	require.NoError(t, err)
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	err = p.Produce(context.Background(), &Message{Topic: "t"})
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, p.Health(context.Background()), ErrClosed)
}
