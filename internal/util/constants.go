package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// 进度快照中的总体状态
const (
	ProgressNotAttempted = "not_attempted"
	ProgressIncomplete   = "incomplete"
	ProgressCompleted    = "completed"
)
