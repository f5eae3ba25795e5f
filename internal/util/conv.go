package util

import (
	"strings"

	"github.com/google/uuid"
)

// ParseID 校验并规范化 uuid 形式的标识，非法时返回 ErrInvalidID
func ParseID(s string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", ErrInvalidID
	}
	return id.String(), nil
}
