package scorm

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// SCORM 1.2 CMITimespan: HHHH:MM:SS[.ss]，小时可超过两位
	timespan12 = regexp.MustCompile(`^(\d+):(\d{1,2}):(\d{1,2}(?:\.\d+)?)$`)

	// SCORM 2004 timeinterval (ISO 8601): P[nY][nM][nD][T[nH][nM][n[.n]S]]
	timeinterval2004 = regexp.MustCompile(`^P(?:(\d+(?:\.\d+)?)Y)?(?:(\d+(?:\.\d+)?)M)?(?:(\d+(?:\.\d+)?)D)?(?:T(?:(\d+(?:\.\d+)?)H)?(?:(\d+(?:\.\d+)?)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)
)

// ParseSessionTime 解析两种会话时长格式，无法解析时返回 0。
// 2004 格式中的天按 24 小时计，年和月长度不固定，忽略。
func ParseSessionTime(s string) time.Duration {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return 0
	case strings.HasPrefix(s, "P"):
		return parseTimeInterval(s)
	case strings.Contains(s, ":"):
		return parseTimespan(s)
	}
	return 0
}

func parseTimespan(s string) time.Duration {
	m := timespan12.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	hours, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0
	}
	minutes, _ := strconv.ParseInt(m[2], 10, 64)
	seconds, _ := strconv.ParseFloat(m[3], 64)
	if minutes > 59 || seconds >= 60 {
		return 0
	}
	// 超出 time.Duration 范围的时长视为无法解析
	if hours >= int64(math.MaxInt64/time.Hour) {
		return 0
	}
	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		floatSeconds(seconds)
}

func parseTimeInterval(s string) time.Duration {
	m := timeinterval2004.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	// "PT" 之后必须有内容
	if strings.HasSuffix(s, "T") {
		return 0
	}
	part := func(i int) float64 {
		if m[i] == "" {
			return 0
		}
		f, _ := strconv.ParseFloat(m[i], 64)
		return f
	}
	total := part(3)*24*3600 + part(4)*3600 + part(5)*60 + part(6)
	return floatSeconds(total)
}

// floatSeconds 秒数转 Duration，负数、NaN 或溢出时返回 0
func floatSeconds(f float64) time.Duration {
	ns := f*float64(time.Second) + 0.5
	if math.IsNaN(ns) || ns < 0 || ns >= math.MaxInt64 {
		return 0
	}
	return time.Duration(ns)
}
