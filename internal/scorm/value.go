package scorm

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"scorm_host_backend/internal/model"

	"github.com/shopspring/decimal"
)

// Value 单个 CMI 元素的取值。内容可能以字符串、数字或布尔值上报，统一按文本保存；
// null、对象和数组视为未上报。
type Value struct {
	text string
	set  bool
}

func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil
	}
	switch b[0] {
	case 'n', '{', '[':
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		v.text, v.set = s, true
	default:
		v.text, v.set = string(b), true
	}
	return nil
}

// Present 是否上报了该元素（空字符串也算上报）
func (v Value) Present() bool {
	return v.set
}

func (v Value) String() string {
	return v.text
}

// StringPtr 上报时返回原样文本，包括空字符串
func (v Value) StringPtr() *string {
	if !v.set {
		return nil
	}
	s := v.text
	return &s
}

// NonEmpty 上报且去空白后非空时返回文本
func (v Value) NonEmpty() (string, bool) {
	if !v.set {
		return "", false
	}
	s := strings.TrimSpace(v.text)
	return s, s != ""
}

// maxScoreText 分数文本的最大长度，与数据库列宽一致
const maxScoreText = 64

// Decimal 按十进制解析，保留上报的小数位；失败或超出列宽时返回 nil
func (v Value) Decimal() *model.Score {
	s, ok := v.NonEmpty()
	if !ok {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.Exponent() > maxScoreText || d.Exponent() < -maxScoreText {
		return nil
	}
	score := model.NewScore(d)
	if len(score.String()) > maxScoreText {
		return nil
	}
	return score
}

// Float 解析为有限浮点数，NaN 和 Inf 视为无效
func (v Value) Float() *float64 {
	s, ok := v.NonEmpty()
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// Scaled cmi.score.scaled，取值必须在 -1..1
func (v Value) Scaled() *float64 {
	f := v.Float()
	if f == nil || *f < -1 || *f > 1 {
		return nil
	}
	return f
}
