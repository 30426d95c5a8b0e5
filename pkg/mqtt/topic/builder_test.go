package topic

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/autopeer-io/gcslink/internal/pkg/mqtt/paths"
)

func TestBuilder(t *testing.T) {
	b := NewBuilder("gcs/v1")

	assert.Equal(t, "gcs/v1/telemetry/drone-1", b.Telemetry("drone-1"))
	assert.Equal(t, "gcs/v1/log/drone-1", b.Log("drone-1"))
	assert.Equal(t, "gcs/v1/command/drone-1", b.Command("drone-1"))
	assert.Equal(t, "gcs/v1/command/ack/drone-1", b.CommandAck("drone-1"))
	assert.Equal(t, "gcs/v1/online/drone-1", b.Online("drone-1"))
	assert.Equal(t, "gcs/v1/command/ack/+", b.All(paths.CommandAck))
}
