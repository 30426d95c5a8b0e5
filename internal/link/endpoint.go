package link

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bluenviron/gomavlib/v3"
	"go.bug.st/serial"
)

// DefaultBaud is used for serial endpoints without an explicit rate.
const DefaultBaud = 57600

// ParseEndpoint parses an endpoint description into a gomavlib endpoint.
func ParseEndpoint(s string) (gomavlib.EndpointConf, error) {
	scheme, rest, ok := strings.Cut(s, ":")
	if !ok || rest == "" {
		return nil, fmt.Errorf("invalid endpoint %q", s)
	}

	switch scheme {
	case "udps":
		return gomavlib.EndpointUDPServer{Address: rest}, nil
	case "udpc":
		return gomavlib.EndpointUDPClient{Address: rest}, nil
	case "udpb":
		return gomavlib.EndpointUDPBroadcast{BroadcastAddress: rest}, nil
	case "tcps":
		return gomavlib.EndpointTCPServer{Address: rest}, nil
	case "tcpc":
		return gomavlib.EndpointTCPClient{Address: rest}, nil
	case "serial":
		return parseSerial(rest)
	default:
		return nil, fmt.Errorf("invalid endpoint %q: unknown scheme %q", s, scheme)
	}
}

func parseSerial(s string) (gomavlib.EndpointConf, error) {
	device, baudText, hasBaud := strings.Cut(s, ":")
	baud := DefaultBaud
	if hasBaud {
		b, err := strconv.Atoi(baudText)
		if err != nil || b <= 0 {
			return nil, fmt.Errorf("invalid serial baud rate %q", baudText)
		}
		baud = b
	}

	if device == "auto" {
		ports, err := serial.GetPortsList()
		if err != nil {
			return nil, fmt.Errorf("failed to list serial ports: %w", err)
		}
		device = pickSerialPort(ports)
		if device == "" {
			return nil, fmt.Errorf("no serial port detected")
		}
	}

	return gomavlib.EndpointSerial{Device: device, Baud: baud}, nil
}

// serialPrefixes rank the device names autopilots usually enumerate as.
var serialPrefixes = []string{
	"/dev/serial/by-id/",
	"/dev/ttyACM",
	"/dev/ttyUSB",
	"/dev/cu.usbmodem",
	"/dev/tty.usbmodem",
	"COM",
}

// pickSerialPort returns the best candidate among ports, or "" when none
// looks like an autopilot.
func pickSerialPort(ports []string) string {
	for _, prefix := range serialPrefixes {
		for _, p := range ports {
			if strings.HasPrefix(p, prefix) {
				return p
			}
		}
	}
	return ""
}
