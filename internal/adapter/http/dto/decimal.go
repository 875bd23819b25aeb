package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var errNotANumber = errors.New("value is not a number")

// ParseDecimal reads a JSON number or numeric string without going through float64.
// An absent or null value yields nil.
func ParseDecimal(raw json.RawMessage) (*decimal.Decimal, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var text string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, err
		}
		text = strings.TrimSpace(text)
	} else {
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, errNotANumber
		}
		text = n.String()
	}
	if text == "" {
		return nil, errNotANumber
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		return nil, errNotANumber
	}
	return &d, nil
}
