package bridge

import (
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCommand(t *testing.T) {
	want := Command{
		ID:     "abc",
		Action: "set_mission",
		Params: map[string]any{
			"items": []any{map[string]any{"lat": 1.5, "lon": 2.5, "alt": 10.0}},
		},
	}

	jc, err := NewCodec("json")
	require.NoError(t, err)
	got, err := jc.DecodeCommand([]byte(`{"id":"abc","action":"set_mission","params":{"items":[{"lat":1.5,"lon":2.5,"alt":10}]}}`))
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("json command mismatch (-want +got):\n%s", diff)
	}

	cc, err := NewCodec("cbor")
	require.NoError(t, err)
	payload, err := cbor.Marshal(map[string]any{
		"id":     "abc",
		"action": "set_mission",
		"params": map[string]any{"items": []any{map[string]any{"lat": 1.5, "lon": 2.5, "alt": 10.0}}},
	})
	require.NoError(t, err)
	got, err = cc.DecodeCommand(payload)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("cbor command mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeCommandErrors(t *testing.T) {
	c, err := NewCodec("json")
	require.NoError(t, err)

	_, err = c.DecodeCommand([]byte(`[]`))
	assert.Error(t, err)

	cmd, err := c.DecodeCommand([]byte(`{"id":"x","params":{}}`))
	assert.ErrorIs(t, err, errMissingAction)
	assert.Equal(t, "x", cmd.ID)

	_, err = NewCodec("xml")
	assert.Error(t, err)
}
