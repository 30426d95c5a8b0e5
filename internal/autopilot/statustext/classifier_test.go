package statustext

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/autopeer-io/gcslink/internal/autopilot/autopilottest"
	"github.com/autopeer-io/gcslink/internal/autopilot/core"
	"github.com/autopeer-io/gcslink/internal/autopilot/mavlink"
)

type firmwareRecorder struct{ versions []string }

func (f *firmwareRecorder) SetFirmwareVersion(v string) { f.versions = append(f.versions, v) }

type claimAll struct{ seen []string }

func (c *claimAll) TryParse(text string) bool { c.seen = append(c.seen, text); return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		severity mavlink.Severity
		want     Class
		wantLog  []autopilottest.LogLine
	}{
		{name: "firmware", text: "APM:Copter V3.5", severity: mavlink.SeverityCritical, want: ClassFirmware},
		{name: "solo firmware", text: "Solo 2.0.20", want: ClassFirmware},
		{name: "error", text: "PreArm: RC not calibrated", severity: mavlink.SeverityCritical, want: ClassAutopilotError},
		{name: "empty", text: "", want: ClassIgnored},
		{
			name: "critical", text: "Something broke", severity: mavlink.SeverityCritical, want: ClassLog,
			wantLog: []autopilottest.LogLine{{Level: core.LogError, Text: "Something broke"}},
		},
		{
			name: "low", text: "Initialising", severity: mavlink.SeverityLow, want: ClassLog,
			wantLog: []autopilottest.LogLine{{Level: core.LogVerbose, Text: "Initialising"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fw := &firmwareRecorder{}
			rec := &autopilottest.Recorder{}
			var claimed []string
			c := NewClassifier(fw, NewErrorParser(func(text string) { claimed = append(claimed, text) }), rec)

			got := c.Classify(&mavlink.StatusText{Severity: tt.severity, Text: tt.text})

			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantLog, rec.Logs())
			switch tt.want {
			case ClassFirmware:
				assert.Equal(t, []string{tt.text}, fw.versions)
				assert.Empty(t, claimed)
			case ClassAutopilotError:
				assert.Equal(t, []string{tt.text}, claimed)
				assert.Empty(t, fw.versions)
			}
		})
	}
}

func TestFirmwareCheckedBeforeParser(t *testing.T) {
	parser := &claimAll{}
	fw := &firmwareRecorder{}
	c := NewClassifier(fw, parser, &autopilottest.Recorder{})

	assert.Equal(t, ClassFirmware, c.Classify(&mavlink.StatusText{Text: "ArduPlane V4.0.0"}))
	assert.Empty(t, parser.seen)
}

func TestNilParser(t *testing.T) {
	rec := &autopilottest.Recorder{}
	c := NewClassifier(&firmwareRecorder{}, nil, rec)
	assert.Equal(t, ClassLog, c.Classify(&mavlink.StatusText{Text: "PreArm: Check fence", Severity: mavlink.SeverityHigh}))
	assert.Equal(t, core.LogWarn, rec.Logs()[0].Level)
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, core.LogError, LevelFor(mavlink.SeverityCritical))
	assert.Equal(t, core.LogWarn, LevelFor(mavlink.SeverityHigh))
	assert.Equal(t, core.LogInfo, LevelFor(mavlink.SeverityMedium))
	assert.Equal(t, core.LogVerbose, LevelFor(mavlink.SeverityLow))
	assert.Equal(t, core.LogDebug, LevelFor(mavlink.SeverityUserResponse))
	assert.Equal(t, core.LogVerbose, LevelFor(mavlink.Severity(42)))
}

func TestErrorParser(t *testing.T) {
	p := NewErrorParser(nil)
	assert.True(t, p.TryParse("Arm: Thr below FS"))
	assert.True(t, p.TryParse("Low Battery!"))
	assert.True(t, p.TryParse("Crash: Disarming"))
	assert.False(t, p.TryParse("Calibration successful"))
	assert.False(t, p.TryParse("Initialising APM"))
}
