package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// BillStatus represents whether a bill is still in force
type BillStatus string

const (
	BillStatusActive    BillStatus = "active"
	BillStatusCancelled BillStatus = "cancelled"
)

func (s BillStatus) String() string {
	return string(s)
}

func (s BillStatus) IsValid() bool {
	return s == BillStatusActive || s == BillStatusCancelled
}

func (s BillStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *BillStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	v := BillStatus(str)
	if !v.IsValid() {
		return fmt.Errorf("invalid bill status %q", str)
	}
	*s = v
	return nil
}

func (s BillStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *BillStatus) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*s = BillStatusActive
	case string:
		*s = BillStatus(v)
	case []byte:
		*s = BillStatus(v)
	default:
		return fmt.Errorf("cannot scan %T into BillStatus", value)
	}
	return nil
}
