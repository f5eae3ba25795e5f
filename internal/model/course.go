package model

import "strings"

// SCORM 内容版本
const (
	ScormVersion12   = "1.2"
	ScormVersion2004 = "2004"
)

// swagger:model Course
type Course struct {
	UUIDBase
	Title       string `gorm:"size:255;not null" json:"title"`
	Version     string `gorm:"size:32;not null;default:'1.2'" json:"version"`
	PackagePath string `gorm:"size:1024;not null" json:"packagePath"`
	LaunchScoID string `gorm:"size:255" json:"launchScoId"`
	Scos        []Sco  `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"scos,omitempty"`
}

func (Course) TableName() string {
	return "scorm_courses"
}

// Is2004 版本标签以 2004 开头即视为 SCORM 2004（如 "2004 4th Edition"）
func (c *Course) Is2004() bool {
	return strings.HasPrefix(strings.TrimSpace(c.Version), ScormVersion2004)
}

// Sco 课程包中注册的可启动内容入口
// swagger:model Sco
type Sco struct {
	UUIDBase
	CourseID   string `gorm:"type:varchar(36);index;not null" json:"courseId"`
	Identifier string `gorm:"size:255;not null" json:"identifier"`
	Title      string `gorm:"size:255;not null" json:"title"`
	LaunchFile string `gorm:"size:1024;not null" json:"launchFile"`
	// 在清单中的顺序
	Position int `gorm:"not null" json:"position"`
}

func (Sco) TableName() string {
	return "scorm_scos"
}
