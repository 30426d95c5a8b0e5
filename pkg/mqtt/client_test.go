package mqtt

import (
	"context"
	"testing"
	"time"

	"github.com/eclipse/paho.golang/paho"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopeer-io/gcslink/pkg/log"
)

func TestTopicsMatch(t *testing.T) {
	tests := []struct {
		filter string
		topic  string
		want   bool
	}{
		{"gcs/v1/command/drone-1", "gcs/v1/command/drone-1", true},
		{"gcs/v1/command/drone-1", "gcs/v1/command/drone-2", false},
		{"gcs/v1/command/+", "gcs/v1/command/drone-2", true},
		{"gcs/v1/command/+", "gcs/v1/command/ack/drone-2", false},
		{"gcs/v1/#", "gcs/v1/command/ack/drone-2", true},
		{"gcs/+/telemetry/+", "gcs/v1/telemetry/drone-1", true},
		{"gcs/v1/telemetry/+", "gcs/v1/telemetry", false},
	}
	for _, tt := range tests {
		t.Run(tt.filter+"|"+tt.topic, func(t *testing.T) {
			assert.Equal(t, tt.want, topicsMatch(tt.filter, tt.topic))
		})
	}
}

func TestTopicFilterStripsSharedGroup(t *testing.T) {
	assert.Equal(t, "gcs/v1/command/+", topicFilter("$share/agents/gcs/v1/command/+"))
	assert.Equal(t, "gcs/v1/command/+", topicFilter("gcs/v1/command/+"))
}

func TestNewClientValidates(t *testing.T) {
	_, err := NewClient(nil)
	require.Error(t, err)

	_, err = NewClient(&ClientConfig{})
	require.Error(t, err)

	_, err = NewClient(&ClientConfig{BrokerURL: "localhost"})
	require.Error(t, err)

	c, err := NewClient(&ClientConfig{BrokerURL: "tcp://localhost:1883"})
	require.NoError(t, err)
	assert.False(t, c.IsConnected())
	assert.Equal(t, uint16(60), c.(*pahoClient).cfg.KeepAlive)
}

func TestDispatchRoutesToMatchingHandlers(t *testing.T) {
	client, err := NewClient(&ClientConfig{BrokerURL: "tcp://localhost:1883", Logger: log.NewNopLogger()})
	require.NoError(t, err)
	c := client.(*pahoClient)

	got := make(chan string, 2)
	c.subscriptions["gcs/v1/command/+"] = subscription{
		filter:  "gcs/v1/command/+",
		handler: func(_ context.Context, topic string, _ []byte) { got <- "command " + topic },
	}
	c.subscriptions["$share/agents/gcs/v1/#"] = subscription{
		filter:  "$share/agents/gcs/v1/#",
		handler: func(_ context.Context, topic string, _ []byte) { got <- "all " + topic },
	}

	ok, err := c.dispatch(paho.PublishReceived{Packet: &paho.Publish{Topic: "gcs/v1/command/drone-1"}})
	require.NoError(t, err)
	assert.True(t, ok)

	var seen []string
	for range 2 {
		select {
		case s := <-got:
			seen = append(seen, s)
		case <-time.After(time.Second):
			t.Fatal("handler not called")
		}
	}
	assert.ElementsMatch(t, []string{"command gcs/v1/command/drone-1", "all gcs/v1/command/drone-1"}, seen)
}

func TestOperationsBeforeStart(t *testing.T) {
	client, err := NewClient(&ClientConfig{BrokerURL: "tcp://localhost:1883", Logger: log.NewNopLogger()})
	require.NoError(t, err)

	ctx := context.Background()
	assert.ErrorIs(t, client.Publish(ctx, "a", AtMostOnce, false, nil), errNotStarted)
	assert.ErrorIs(t, client.Subscribe(ctx, "a", AtMostOnce, nil), errNotStarted)
	assert.ErrorIs(t, client.AwaitConnection(ctx), errNotStarted)
	client.Disconnect(ctx)
}
