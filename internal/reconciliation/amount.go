package reconciliation

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// SafeAmount coerces a stored monetary value to a decimal. Values that are not
// finite numbers are parsed as text, and anything unparseable becomes zero so
// a bad row never poisons a total.
func SafeAmount(v any) decimal.Decimal {
	switch x := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return x
	case *decimal.Decimal:
		if x == nil {
			return decimal.Zero
		}
		return *x
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat(x)
	case float32:
		return SafeAmount(float64(x))
	case int:
		return decimal.NewFromInt(int64(x))
	case int64:
		return decimal.NewFromInt(x)
	case int32:
		return decimal.NewFromInt(int64(x))
	case json.Number:
		return parseOrZero(string(x))
	case string:
		return parseOrZero(x)
	case []byte:
		return parseOrZero(string(x))
	case sql.NullString:
		if !x.Valid {
			return decimal.Zero
		}
		return parseOrZero(x.String)
	case Amount:
		return x.Decimal
	}
	return decimal.Zero
}

func parseOrZero(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Amount decodes a JSON number or numeric string and falls back to zero for
// anything else, including null.
type Amount struct {
	decimal.Decimal
}

func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			a.Decimal = decimal.Zero
			return nil
		}
		a.Decimal = parseOrZero(s)
		return nil
	}
	a.Decimal = parseOrZero(string(data))
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return a.Decimal.MarshalJSON()
}
