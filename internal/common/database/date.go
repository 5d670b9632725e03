// internal/common/database/date.go
// Calendar-day value type for DATE columns. lib/pq decodes DATE into
// time.Time; scanning through this type normalizes it back to the
// YYYY-MM-DD wire form so a row reads back exactly as it was written.

package database

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Date is a calendar day in YYYY-MM-DD form.
type Date string

func (d *Date) Scan(value interface{}) error {
	switch v := value.(type) {
	case time.Time:
		*d = Date(v.Format("2006-01-02"))
	case []byte:
		*d = Date(v)
	case string:
		*d = Date(v)
	case nil:
		*d = ""
	default:
		return fmt.Errorf("cannot scan %T into Date", value)
	}
	return nil
}

func (d Date) Value() (driver.Value, error) {
	return string(d), nil
}
