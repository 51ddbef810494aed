package request

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexString accepts a JSON string or number. HTML number inputs reach the
// API either way depending on the client, and blank inputs arrive as "".
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("expected a string or number, got %s", data)
		}
		*f = FlexString(n.String())
	}
	return nil
}

func (f FlexString) String() string {
	return strings.TrimSpace(string(f))
}

// Int64 parses the value as an integer. An empty value is reported as absent.
func (f FlexString) Int64() (int64, bool, error) {
	s := f.String()
	if s == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, true, err
	}
	return v, true, nil
}

// Float64 parses the value as a decimal number
func (f FlexString) Float64() (float64, error) {
	return strconv.ParseFloat(f.String(), 64)
}
