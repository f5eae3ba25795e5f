package scorm

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"

	"scorm_host_backend/internal/model"
)

// Update 一次提交对 attempt 的字段更新，nil 表示本次未上报
type Update struct {
	LessonLocation *string
	SuspendData    *string
	LaunchData     *string
	LessonMode     *string

	CompletionStatus *string
	SuccessStatus    *string

	ScoreRaw    *model.Score
	ScoreMin    *model.Score
	ScoreMax    *model.Score
	ScoreScaled *float64

	SessionTime time.Duration
}

// Options 规整行为开关
type Options struct {
	// 1.2 中无法识别的 lesson_status 是否把 success_status 归为 unknown。
	// 默认 false：两个状态都原样写入上报值。
	ClampSuccessStatus bool
}

// Parser 某个 SCORM 版本的 CMI 解析器
type Parser interface {
	Version() string
	Parse(data json.RawMessage) (*Update, error)
}

// ParserFor 按课程版本选择解析器，版本以 2004 开头用 2004，其余按 1.2 处理
func ParserFor(version string, opts Options) Parser {
	if strings.HasPrefix(strings.TrimSpace(version), model.ScormVersion2004) {
		return Parser2004{}
	}
	return Parser12{Options: opts}
}

// Normalize 解包请求体并按版本解析
func Normalize(body []byte, version string, opts Options) (*Update, error) {
	data, _, err := Unwrap(body)
	if err != nil {
		return nil, err
	}
	return ParserFor(version, opts).Parse(data)
}

// decodeTolerant 字段类型不符（例如 core 被上报成字符串）时保留已解析的部分
func decodeTolerant(data json.RawMessage, v interface{}) error {
	err := json.Unmarshal(data, v)
	var typeErr *json.UnmarshalTypeError
	if err == nil || errors.As(err, &typeErr) {
		return nil
	}
	return ErrMalformedPayload
}

// ApplyTo 把更新合并进 attempt：会话时长累加到总时长，
// 首次进入 completed 时写入 CompletedAt。返回本次是否刚刚完成。
func (u *Update) ApplyTo(a *model.Attempt, now time.Time) bool {
	if u.LessonLocation != nil {
		a.LessonLocation = *u.LessonLocation
	}
	if u.SuspendData != nil {
		a.SuspendData = *u.SuspendData
	}
	if u.LaunchData != nil {
		a.LaunchData = *u.LaunchData
	}
	if u.LessonMode != nil {
		a.LessonMode = *u.LessonMode
	}
	if u.CompletionStatus != nil {
		a.CompletionStatus = *u.CompletionStatus
	}
	if u.SuccessStatus != nil {
		a.SuccessStatus = *u.SuccessStatus
	}

	if u.ScoreRaw != nil {
		a.ScoreRaw = u.ScoreRaw
	}
	if u.ScoreMin != nil {
		a.ScoreMin = u.ScoreMin
	}
	if u.ScoreMax != nil {
		a.ScoreMax = u.ScoreMax
	}
	switch {
	case u.ScoreScaled != nil:
		a.ScoreScaled = u.ScoreScaled
	case u.ScoreRaw != nil || u.ScoreMax != nil:
		if scaled, ok := scaledScore(a.ScoreRaw, a.ScoreMax); ok {
			a.ScoreScaled = &scaled
		}
	}

	if ms := u.SessionTime.Milliseconds(); ms > 0 && a.TotalTimeMs <= math.MaxInt64-ms {
		a.TotalTimeMs += ms
	}

	if a.CompletionStatus == model.CompletionCompleted && a.CompletedAt == nil {
		t := now
		a.CompletedAt = &t
		return true
	}
	return false
}

// scaledScore raw/max，仅在两者都存在且 max > 0 时有效，结果限制在 0..1
func scaledScore(raw, max *model.Score) (float64, bool) {
	if raw == nil || max == nil || !max.IsPositive() {
		return 0, false
	}
	f, _ := raw.Div(max.Decimal).Float64()
	if math.IsNaN(f) {
		return 0, false
	}
	return math.Max(0, math.Min(1, f)), true
}
