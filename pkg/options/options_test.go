package options

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAddress(t *testing.T) {
	require.NoError(t, ValidateAddress("0.0.0.0:8080"))
	require.NoError(t, ValidateAddress(":8080"))
	require.Error(t, ValidateAddress("localhost"))
	require.Error(t, ValidateAddress("localhost:http"))
	require.Error(t, ValidateAddress("localhost:70000"))
}

func TestDefaultsAreValid(t *testing.T) {
	for name, o := range map[string]IOptions{
		"mavlink": NewMavlinkOptions(),
		"vehicle": NewVehicleOptions(),
		"mqtt":    NewMqttOptions(),
		"http":    NewHttpOptions(),
		"s3":      NewS3Options(),
	} {
		assert.Empty(t, o.Validate(), name)
	}
}

func TestMavlinkOptionsValidate(t *testing.T) {
	o := NewMavlinkOptions()
	o.Endpoints = []string{"udps:0.0.0.0:14550", "bogus:1", "serial:auto"}
	o.SystemID = 0
	o.CommandTimeout = 0

	assert.Len(t, o.Validate(), 3)
}

func TestMqttOptions(t *testing.T) {
	o := NewMqttOptions()
	assert.False(t, o.Enabled())

	o.Broker = "tcp://localhost:1883"
	o.KeepAlive = 30 * time.Second
	require.Empty(t, o.Validate())
	assert.Equal(t, uint16(30), o.ToClientConfig().KeepAlive)

	o.Encoding = "xml"
	o.Broker = "localhost"
	assert.Len(t, o.Validate(), 2)
}

func TestS3OptionsDisabledSkipsValidation(t *testing.T) {
	o := NewS3Options()
	o.BucketName = ""
	assert.Empty(t, o.Validate())

	o.Endpoint = "minio.local:9000"
	assert.Len(t, o.Validate(), 1)
}

func TestHttpOptionsValidate(t *testing.T) {
	o := NewHttpOptions()
	o.Addr = "8080"
	o.RequestTimeout = 0

	errs := o.Validate()
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Error(), "--http.addr")
}
