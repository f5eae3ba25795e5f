package model

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Score 十进制分数，按上报时的小数位保存和输出，"85.50" 不会变成 "85.5"
type Score struct {
	decimal.Decimal
}

func NewScore(d decimal.Decimal) *Score {
	return &Score{Decimal: d}
}

func (s Score) String() string {
	if exp := s.Exponent(); exp < 0 {
		return s.StringFixed(-exp)
	}
	return s.Decimal.String()
}

func (s Score) Value() (driver.Value, error) {
	return s.String(), nil
}

func (s *Score) Scan(value interface{}) error {
	return s.Decimal.Scan(value)
}

func (s Score) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}
