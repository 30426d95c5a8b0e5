package link

import (
	"testing"

	"github.com/bluenviron/gomavlib/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		in   string
		want gomavlib.EndpointConf
	}{
		{"udps:0.0.0.0:14550", gomavlib.EndpointUDPServer{Address: "0.0.0.0:14550"}},
		{"udpc:10.0.0.2:14550", gomavlib.EndpointUDPClient{Address: "10.0.0.2:14550"}},
		{"udpb:192.168.1.255:14550", gomavlib.EndpointUDPBroadcast{BroadcastAddress: "192.168.1.255:14550"}},
		{"tcps:0.0.0.0:5760", gomavlib.EndpointTCPServer{Address: "0.0.0.0:5760"}},
		{"tcpc:127.0.0.1:5760", gomavlib.EndpointTCPClient{Address: "127.0.0.1:5760"}},
		{"serial:/dev/ttyACM0:115200", gomavlib.EndpointSerial{Device: "/dev/ttyACM0", Baud: 115200}},
		{"serial:/dev/ttyUSB1", gomavlib.EndpointSerial{Device: "/dev/ttyUSB1", Baud: DefaultBaud}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEndpoint(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseEndpointErrors(t *testing.T) {
	for _, in := range []string{"", "udps", "udps:", "quic:1.2.3.4:1", "serial:/dev/ttyACM0:fast"} {
		_, err := ParseEndpoint(in)
		assert.Error(t, err, in)
	}
}

func TestPickSerialPort(t *testing.T) {
	assert.Equal(t, "/dev/ttyACM0", pickSerialPort([]string{"/dev/ttyS0", "/dev/ttyUSB0", "/dev/ttyACM0"}))
	assert.Equal(t, "COM4", pickSerialPort([]string{"COM4"}))
	assert.Empty(t, pickSerialPort([]string{"/dev/ttyS0"}))
}
