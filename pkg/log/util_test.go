package log

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type mode uint8

func (m mode) String() string { return "GUIDED" }

func TestToFields(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name  string
		input []any
		keys  []string
		types []zapcore.FieldType
	}{
		{"empty", nil, nil, nil},
		{
			"typed pairs",
			[]any{"vehicleID", "drone-1", "sysid", uint8(1), "armed", true, "timeout", 3 * time.Second},
			[]string{"vehicleID", "sysid", "armed", "timeout"},
			[]zapcore.FieldType{zapcore.StringType, zapcore.Uint8Type, zapcore.BoolType, zapcore.DurationType},
		},
		{"bare error", []any{boom}, []string{"error"}, []zapcore.FieldType{zapcore.ErrorType}},
		{"stringer", []any{"mode", mode(4)}, []string{"mode"}, []zapcore.FieldType{zapcore.StringerType}},
		{
			"field passthrough",
			[]any{zap.Int("seq", 3), "endpoints", []string{"udps:0.0.0.0:14550"}},
			[]string{"seq", "endpoints"},
			[]zapcore.FieldType{zapcore.Int64Type, zapcore.ArrayMarshalerType},
		},
		{"unpaired value", []any{"k", "v", "dangling"}, []string{"k", "arg#2"}, []zapcore.FieldType{zapcore.StringType, zapcore.StringType}},
		{"non-string key", []any{42, "v"}, []string{"invalid_key_1"}, []zapcore.FieldType{zapcore.ReflectType}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := toFields(tt.input...)
			var keys []string
			var types []zapcore.FieldType
			for _, f := range fields {
				keys = append(keys, f.Key)
				types = append(types, f.Type)
			}
			assert.Equal(t, tt.keys, keys)
			assert.Equal(t, tt.types, types)
		})
	}
}
