package scorm

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"scorm_host_backend/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freshAttempt() *model.Attempt {
	return model.NewAttempt("user-1", "course-1", 1, time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC))
}

func TestParser12_StatusMapping(t *testing.T) {
	tests := []struct {
		status     string
		completion string
		success    string
	}{
		{"passed", "completed", "passed"},
		{"failed", "completed", "failed"},
		{"completed", "completed", "unknown"},
		{"incomplete", "incomplete", "incomplete"},
		{"browsed", "browsed", "browsed"},
		{"not attempted", "not attempted", "not attempted"},
	}

	for _, tc := range tests {
		t.Run(tc.status, func(t *testing.T) {
			u, err := Normalize([]byte(`{"core":{"lesson_status":"`+tc.status+`"}}`), "1.2", Options{})
			require.NoError(t, err)
			require.NotNil(t, u.CompletionStatus)
			require.NotNil(t, u.SuccessStatus)
			assert.Equal(t, tc.completion, *u.CompletionStatus)
			assert.Equal(t, tc.success, *u.SuccessStatus)
		})
	}
}

func TestParser12_ClampSuccessStatus(t *testing.T) {
	u, err := Normalize([]byte(`{"core":{"lesson_status":"browsed"}}`), "1.2", Options{ClampSuccessStatus: true})
	require.NoError(t, err)
	assert.Equal(t, "browsed", *u.CompletionStatus)
	assert.Equal(t, model.SuccessUnknown, *u.SuccessStatus)

	u, err = Normalize([]byte(`{"core":{"lesson_status":"passed"}}`), "1.2", Options{ClampSuccessStatus: true})
	require.NoError(t, err)
	assert.Equal(t, model.SuccessPassed, *u.SuccessStatus)
}

func TestParser12_Fields(t *testing.T) {
	body := `{"payload": {
		"core": {
			"lesson_location": "page-7",
			"lesson_mode": "review",
			"session_time": "0000:10:00",
			"score": {"raw": "1.3333333", "min": 0, "max": "100"}
		},
		"suspend_data": "root-level",
		"launch_data": "from-lms"
	}}`

	u, err := Normalize([]byte(body), "1.2", Options{})
	require.NoError(t, err)

	assert.Equal(t, "page-7", *u.LessonLocation)
	assert.Equal(t, "review", *u.LessonMode)
	assert.Equal(t, "root-level", *u.SuspendData)
	assert.Equal(t, "from-lms", *u.LaunchData)
	assert.Equal(t, 10*time.Minute, u.SessionTime)
	assert.Equal(t, "1.3333333", u.ScoreRaw.String())
	assert.True(t, u.ScoreMin.IsZero())
	assert.True(t, u.ScoreMax.Equal(decimal.NewFromInt(100)))
	assert.Nil(t, u.CompletionStatus)
	assert.Nil(t, u.ScoreScaled)
}

func TestParser12_CoreSuspendDataWins(t *testing.T) {
	u, err := Normalize([]byte(`{"core":{"suspend_data":"nested"},"suspend_data":"root"}`), "1.2", Options{})
	require.NoError(t, err)
	assert.Equal(t, "nested", *u.SuspendData)
}

func TestParser12_ToleratesBadFields(t *testing.T) {
	body := `{"core": {
		"lesson_location": null,
		"lesson_status": {"unexpected": true},
		"score": {"raw": "ninety", "max": "100"},
		"session_time": "soon"
	}, "extra": [1, 2, 3]}`

	u, err := Normalize([]byte(body), "1.2", Options{})
	require.NoError(t, err)
	assert.Nil(t, u.LessonLocation)
	assert.Nil(t, u.CompletionStatus)
	assert.Nil(t, u.ScoreRaw)
	assert.NotNil(t, u.ScoreMax)
	assert.Zero(t, u.SessionTime)
}

func TestParser12_CoreOfWrongType(t *testing.T) {
	u, err := Normalize([]byte(`{"core": "oops", "suspend_data": "kept"}`), "1.2", Options{})
	require.NoError(t, err)
	assert.Equal(t, "kept", *u.SuspendData)
}

func TestParser2004_Fields(t *testing.T) {
	body := `{
		"location": "slide-4",
		"suspend_data": "{\"a\":1}",
		"completion_status": "completed",
		"success_status": "failed",
		"mode": "browse",
		"session_time": "PT5M",
		"score": {"raw": 45.5, "min": "0", "max": "50", "scaled": "0.91"},
		"core": {"lesson_status": "passed"}
	}`

	u, err := Normalize([]byte(body), "2004", Options{})
	require.NoError(t, err)

	assert.Equal(t, "slide-4", *u.LessonLocation)
	assert.Equal(t, `{"a":1}`, *u.SuspendData)
	assert.Equal(t, "completed", *u.CompletionStatus)
	assert.Equal(t, "failed", *u.SuccessStatus)
	assert.Equal(t, "browse", *u.LessonMode)
	assert.Equal(t, 5*time.Minute, u.SessionTime)
	assert.Equal(t, "45.5", u.ScoreRaw.String())
	assert.InDelta(t, 0.91, *u.ScoreScaled, 1e-9)
}

func TestParserFor(t *testing.T) {
	assert.Equal(t, "2004", ParserFor("2004", Options{}).Version())
	assert.Equal(t, "2004", ParserFor("2004 4th Edition", Options{}).Version())
	assert.Equal(t, "1.2", ParserFor("1.2", Options{}).Version())
	assert.Equal(t, "1.2", ParserFor("", Options{}).Version())
}

func TestApplyTo_ScaledScoreDerivedFromRawAndMax(t *testing.T) {
	a := freshAttempt()
	u, err := Normalize([]byte(`{"core":{"lesson_status":"incomplete","score":{"raw":"40","min":"0","max":"100"}}}`), "1.2", Options{})
	require.NoError(t, err)

	completed := u.ApplyTo(a, time.Now())
	assert.False(t, completed)
	require.NotNil(t, a.ScoreScaled)
	assert.InDelta(t, 0.4, *a.ScoreScaled, 1e-9)
	assert.Equal(t, "incomplete", a.CompletionStatus)
	assert.Nil(t, a.CompletedAt)

	// 只上报 raw 时沿用之前的 max
	u, err = Normalize([]byte(`{"core":{"score":{"raw":"90"}}}`), "1.2", Options{})
	require.NoError(t, err)
	u.ApplyTo(a, time.Now())
	assert.InDelta(t, 0.9, *a.ScoreScaled, 1e-9)
}

func TestApplyTo_ZeroMaxLeavesScaledUnset(t *testing.T) {
	a := freshAttempt()
	u, err := Normalize([]byte(`{"core":{"score":{"raw":"5","max":"0"}}}`), "1.2", Options{})
	require.NoError(t, err)
	u.ApplyTo(a, time.Now())
	assert.Nil(t, a.ScoreScaled)
	assert.Equal(t, "5", a.ScoreRaw.String())
}

func TestApplyTo_SessionTimeAccumulates(t *testing.T) {
	a := freshAttempt()
	body := []byte(`{"core":{"session_time":"00:01:00"}}`)

	for i := 0; i < 3; i++ {
		u, err := Normalize(body, "1.2", Options{})
		require.NoError(t, err)
		u.ApplyTo(a, time.Now())
	}
	assert.Equal(t, 3*time.Minute, a.TotalTime())
}

func TestApplyTo_CompletionLatch(t *testing.T) {
	a := freshAttempt()
	first := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	u, err := Normalize([]byte(`{"core":{"lesson_status":"passed"}}`), "1.2", Options{})
	require.NoError(t, err)
	assert.True(t, u.ApplyTo(a, first))
	require.NotNil(t, a.CompletedAt)
	assert.Equal(t, first, *a.CompletedAt)

	u, err = Normalize([]byte(`{"core":{"lesson_status":"incomplete"}}`), "1.2", Options{})
	require.NoError(t, err)
	assert.False(t, u.ApplyTo(a, first.Add(time.Hour)))
	assert.Equal(t, "incomplete", a.CompletionStatus)
	assert.Equal(t, first, *a.CompletedAt)

	u, err = Normalize([]byte(`{"core":{"lesson_status":"completed"}}`), "1.2", Options{})
	require.NoError(t, err)
	assert.False(t, u.ApplyTo(a, first.Add(2*time.Hour)))
	assert.Equal(t, first, *a.CompletedAt)
}

func TestApplyTo_EmptyUpdateKeepsResumeState(t *testing.T) {
	a := freshAttempt()
	a.LessonLocation = "p2"
	a.SuspendData = "blob"

	u, err := Normalize([]byte(`{}`), "2004", Options{})
	require.NoError(t, err)
	u.ApplyTo(a, time.Now())

	assert.Equal(t, "p2", a.LessonLocation)
	assert.Equal(t, "blob", a.SuspendData)
	assert.Equal(t, model.CompletionNotAttempted, a.CompletionStatus)
}

func TestParser2004_NonFiniteScaledIgnored(t *testing.T) {
	for _, scaled := range []string{`"NaN"`, `"Inf"`, `"-Infinity"`, `"1e400"`, `1.5`, `"-1.01"`} {
		t.Run(scaled, func(t *testing.T) {
			body := `{"location": "p3", "suspend_data": "s", "score": {"scaled": ` + scaled + `}}`
			u, err := Normalize([]byte(body), "2004", Options{})
			require.NoError(t, err)
			assert.Nil(t, u.ScoreScaled)
			assert.Equal(t, "p3", *u.LessonLocation)

			a := freshAttempt()
			u.ApplyTo(a, time.Now())
			assert.Nil(t, a.ScoreScaled)
			assert.Equal(t, "s", a.SuspendData)

			_, err = json.Marshal(a)
			assert.NoError(t, err)
		})
	}
}

func TestParser2004_ScaledBounds(t *testing.T) {
	u, err := Normalize([]byte(`{"score": {"scaled": "-1"}}`), "2004", Options{})
	require.NoError(t, err)
	require.NotNil(t, u.ScoreScaled)
	assert.Equal(t, -1.0, *u.ScoreScaled)

	u, err = Normalize([]byte(`{"score": {"scaled": 1}}`), "2004", Options{})
	require.NoError(t, err)
	require.NotNil(t, u.ScoreScaled)
	assert.Equal(t, 1.0, *u.ScoreScaled)
}

func TestParser12_OversizedRawIgnored(t *testing.T) {
	for _, raw := range []string{`"1e400"`, `"1e-400"`, `1e999999999`} {
		t.Run(raw, func(t *testing.T) {
			u, err := Normalize([]byte(`{"core":{"score":{"raw":`+raw+`,"max":"100"}}}`), "1.2", Options{})
			require.NoError(t, err)
			assert.Nil(t, u.ScoreRaw)
			require.NotNil(t, u.ScoreMax)

			a := freshAttempt()
			u.ApplyTo(a, time.Now())
			assert.Nil(t, a.ScoreRaw)
			assert.Nil(t, a.ScoreScaled)
		})
	}
}

func TestParser12_RawKeepsReportedDigits(t *testing.T) {
	u, err := Normalize([]byte(`{"core":{"score":{"raw":"85.50","max":"100.0"}}}`), "1.2", Options{})
	require.NoError(t, err)
	assert.Equal(t, "85.50", u.ScoreRaw.String())
	assert.Equal(t, "100.0", u.ScoreMax.String())
}

func TestApplyTo_DerivedScaledClampedToUnitRange(t *testing.T) {
	a := freshAttempt()
	u, err := Normalize([]byte(`{"core":{"score":{"raw":"150","max":"100"}}}`), "1.2", Options{})
	require.NoError(t, err)
	u.ApplyTo(a, time.Now())
	require.NotNil(t, a.ScoreScaled)
	assert.Equal(t, 1.0, *a.ScoreScaled)
	assert.Equal(t, "150", a.ScoreRaw.String())

	u, err = Normalize([]byte(`{"core":{"score":{"raw":"-20"}}}`), "1.2", Options{})
	require.NoError(t, err)
	u.ApplyTo(a, time.Now())
	require.NotNil(t, a.ScoreScaled)
	assert.Equal(t, 0.0, *a.ScoreScaled)
}

func TestApplyTo_TotalTimeSaturates(t *testing.T) {
	a := freshAttempt()
	a.TotalTimeMs = math.MaxInt64 - 10

	u, err := Normalize([]byte(`{"core":{"session_time":"00:01:00"}}`), "1.2", Options{})
	require.NoError(t, err)
	u.ApplyTo(a, time.Now())
	assert.Equal(t, int64(math.MaxInt64-10), a.TotalTimeMs)
}
