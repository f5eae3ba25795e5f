package scorm

import (
	"encoding/json"

	"scorm_host_backend/internal/model"
)

type score2004 struct {
	Raw    Value `json:"raw"`
	Min    Value `json:"min"`
	Max    Value `json:"max"`
	Scaled Value `json:"scaled"`
}

// cmi2004 SCORM 2004 的 cmi.* 数据，字段都在根级
type cmi2004 struct {
	Location         Value     `json:"location"`
	SuspendData      Value     `json:"suspend_data"`
	LaunchData       Value     `json:"launch_data"`
	Mode             Value     `json:"mode"`
	CompletionStatus Value     `json:"completion_status"`
	SuccessStatus    Value     `json:"success_status"`
	SessionTime      Value     `json:"session_time"`
	Score            score2004 `json:"score"`
}

type Parser2004 struct{}

func (Parser2004) Version() string {
	return model.ScormVersion2004
}

func (Parser2004) Parse(data json.RawMessage) (*Update, error) {
	var in cmi2004
	if err := decodeTolerant(data, &in); err != nil {
		return nil, err
	}

	u := &Update{
		LessonLocation: in.Location.StringPtr(),
		SuspendData:    in.SuspendData.StringPtr(),
		LaunchData:     in.LaunchData.StringPtr(),
		ScoreRaw:       in.Score.Raw.Decimal(),
		ScoreMin:       in.Score.Min.Decimal(),
		ScoreMax:       in.Score.Max.Decimal(),
		ScoreScaled:    in.Score.Scaled.Scaled(),
		SessionTime:    ParseSessionTime(in.SessionTime.String()),
	}
	if mode, ok := in.Mode.NonEmpty(); ok {
		u.LessonMode = &mode
	}
	if completion, ok := in.CompletionStatus.NonEmpty(); ok {
		u.CompletionStatus = &completion
	}
	if success, ok := in.SuccessStatus.NonEmpty(); ok {
		u.SuccessStatus = &success
	}
	return u, nil
}
