package scorm

import (
	"encoding/json"
	"strings"

	"scorm_host_backend/internal/model"
)

type score12 struct {
	Raw Value `json:"raw"`
	Min Value `json:"min"`
	Max Value `json:"max"`
}

type core12 struct {
	LessonLocation Value   `json:"lesson_location"`
	LessonStatus   Value   `json:"lesson_status"`
	LessonMode     Value   `json:"lesson_mode"`
	SuspendData    Value   `json:"suspend_data"`
	SessionTime    Value   `json:"session_time"`
	Score          score12 `json:"score"`
}

// cmi12 SCORM 1.2 的 cmi.* 数据，大部分字段位于 core 之下
type cmi12 struct {
	Core        core12 `json:"core"`
	SuspendData Value  `json:"suspend_data"`
	LaunchData  Value  `json:"launch_data"`
}

type Parser12 struct {
	Options Options
}

func (Parser12) Version() string {
	return model.ScormVersion12
}

func (p Parser12) Parse(data json.RawMessage) (*Update, error) {
	var in cmi12
	if err := decodeTolerant(data, &in); err != nil {
		return nil, err
	}

	u := &Update{
		LessonLocation: in.Core.LessonLocation.StringPtr(),
		LaunchData:     in.LaunchData.StringPtr(),
		ScoreRaw:       in.Core.Score.Raw.Decimal(),
		ScoreMin:       in.Core.Score.Min.Decimal(),
		ScoreMax:       in.Core.Score.Max.Decimal(),
		SessionTime:    ParseSessionTime(in.Core.SessionTime.String()),
	}

	// core.suspend_data 优先，其次根级 suspend_data
	if in.Core.SuspendData.Present() {
		u.SuspendData = in.Core.SuspendData.StringPtr()
	} else {
		u.SuspendData = in.SuspendData.StringPtr()
	}

	if mode, ok := in.Core.LessonMode.NonEmpty(); ok {
		u.LessonMode = &mode
	}

	if status, ok := in.Core.LessonStatus.NonEmpty(); ok {
		completion, success := p.mapLessonStatus(status)
		u.CompletionStatus = &completion
		u.SuccessStatus = &success
	}
	return u, nil
}

// mapLessonStatus 将 1.2 的单一 lesson_status 拆成 (completion, success)。
// 非终态值原样写入两个字段，这是为兼容保留的既有行为；开启 ClampSuccessStatus 后
// success 归为 unknown。
func (p Parser12) mapLessonStatus(status string) (string, string) {
	switch strings.ToLower(status) {
	case "passed":
		return model.CompletionCompleted, model.SuccessPassed
	case "failed":
		return model.CompletionCompleted, model.SuccessFailed
	case "completed":
		return model.CompletionCompleted, model.SuccessUnknown
	}
	if p.Options.ClampSuccessStatus {
		return status, model.SuccessUnknown
	}
	return status, status
}
