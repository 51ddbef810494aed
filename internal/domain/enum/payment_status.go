package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// PaymentStatus represents how much of a bill has been paid
type PaymentStatus string

const (
	PaymentStatusPending       PaymentStatus = "pending"
	PaymentStatusPartiallyPaid PaymentStatus = "partially_paid"
	PaymentStatusPaid          PaymentStatus = "paid"
	PaymentStatusCancelled     PaymentStatus = "cancelled"
)

func (s PaymentStatus) String() string {
	return string(s)
}

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPartiallyPaid, PaymentStatusPaid, PaymentStatusCancelled:
		return true
	}
	return false
}

func (s PaymentStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *PaymentStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	v := PaymentStatus(str)
	if !v.IsValid() {
		return fmt.Errorf("invalid payment status %q", str)
	}
	*s = v
	return nil
}

func (s PaymentStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *PaymentStatus) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*s = PaymentStatusPending
	case string:
		*s = PaymentStatus(v)
	case []byte:
		*s = PaymentStatus(v)
	default:
		return fmt.Errorf("cannot scan %T into PaymentStatus", value)
	}
	return nil
}
