package scorm

import (
	"bytes"
	"encoding/json"
	"errors"
)

var ErrMalformedPayload = errors.New("malformed cmi payload")

// envelopeKey 标准请求体中承载 CMI 数据的字段
const envelopeKey = "payload"

// Unwrap 取出 CMI 数据根。根对象的 payload 字段是 JSON 对象时使用它，
// 否则把整个对象当作数据根（旧的裸格式）。wrapped 表示是否为标准格式。
func Unwrap(body []byte) (data json.RawMessage, wrapped bool, err error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return nil, false, ErrMalformedPayload
	}

	var root map[string]json.RawMessage
	if err := json.Unmarshal(body, &root); err != nil {
		return nil, false, ErrMalformedPayload
	}

	if inner, ok := root[envelopeKey]; ok {
		inner = bytes.TrimSpace(inner)
		if len(inner) > 0 && inner[0] == '{' {
			return inner, true, nil
		}
	}
	return json.RawMessage(body), false, nil
}
