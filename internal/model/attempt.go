package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	CompletionNotAttempted = "not attempted"
	CompletionIncomplete   = "incomplete"
	CompletionCompleted    = "completed"

	SuccessPassed  = "passed"
	SuccessFailed  = "failed"
	SuccessUnknown = "unknown"

	LessonModeNormal = "normal"
	LessonModeReview = "review"
	LessonModeBrowse = "browse"
)

// Attempt 学习者对某课程的一次学习记录
// 分数以文本保存，保证内容上报的小数位原样往返
// swagger:model Attempt
type Attempt struct {
	ID            string `gorm:"primaryKey;type:varchar(36)" json:"attemptId"`
	UserID        string `gorm:"type:varchar(36);not null;uniqueIndex:idx_attempt_number,priority:1;index:idx_attempt_started,priority:1;index:idx_attempt_completed,priority:1" json:"userId"`
	CourseID      string `gorm:"type:varchar(36);not null;uniqueIndex:idx_attempt_number,priority:2;index:idx_attempt_started,priority:2;index:idx_attempt_completed,priority:2" json:"courseId"`
	AttemptNumber int    `gorm:"not null;uniqueIndex:idx_attempt_number,priority:3" json:"attemptNumber"`

	StartedAt      time.Time  `gorm:"not null;index:idx_attempt_started,priority:3" json:"startedAt"`
	LastAccessedAt time.Time  `gorm:"not null" json:"lastAccessedAt"`
	CompletedAt    *time.Time `gorm:"index:idx_attempt_completed,priority:3" json:"completedAt,omitempty"`
	TotalTimeMs    int64      `gorm:"not null;default:0" json:"totalTimeMs"`

	CompletionStatus string `gorm:"size:50;not null;default:'not attempted'" json:"completionStatus"`
	SuccessStatus    string `gorm:"size:50;not null;default:'unknown'" json:"successStatus"`

	ScoreRaw    *Score   `gorm:"type:varchar(64)" json:"scoreRaw,omitempty"`
	ScoreMin    *Score   `gorm:"type:varchar(64)" json:"scoreMin,omitempty"`
	ScoreMax    *Score   `gorm:"type:varchar(64)" json:"scoreMax,omitempty"`
	ScoreScaled *float64 `json:"scoreScaled,omitempty"`

	LessonLocation string `gorm:"size:1024" json:"lessonLocation"`
	SuspendData    string `gorm:"type:longtext" json:"suspendData"`
	LaunchData     string `gorm:"type:longtext" json:"launchData"`
	LessonMode     string `gorm:"size:50" json:"lessonMode"`

	// 最近一次提交的完整请求体，用于排查问题以及兼容将来新增的字段。
	// 始终写入合法 JSON（初始为 {}），不存 NULL
	AttemptState datatypes.JSON `gorm:"not null" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Attempt) TableName() string {
	return "scorm_attempts"
}

// IsOpen 尚未完成的 attempt 可被续学
func (a *Attempt) IsOpen() bool {
	return a.CompletedAt == nil
}

func (a *Attempt) TotalTime() time.Duration {
	return time.Duration(a.TotalTimeMs) * time.Millisecond
}

// NewAttempt 创建一条初始状态的 attempt
func NewAttempt(userID, courseID string, number int, now time.Time) *Attempt {
	return &Attempt{
		ID:               GenerateUUID(),
		UserID:           userID,
		CourseID:         courseID,
		AttemptNumber:    number,
		StartedAt:        now,
		LastAccessedAt:   now,
		CompletionStatus: CompletionNotAttempted,
		SuccessStatus:    SuccessUnknown,
		AttemptState:     datatypes.JSON("{}"),
	}
}
