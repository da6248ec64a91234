package types

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

var (
	_ sql.Scanner   = (*Recommendations)(nil)
	_ driver.Valuer = Recommendations(nil)
)

// Recommendations is the ordered advice list attached to an alert.
// It is stored as a JSONB array.
type Recommendations []string

// scanJSONB scans a JSONB database value into dest.
// It handles nil values, []byte, and string representations from different database drivers.
func scanJSONB(dest any, value any) error {
	if value == nil {
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("jsonb: unsupported scan type %T", value)
	}
	return json.Unmarshal(data, dest)
}

// Scan implements the sql.Scanner interface for reading JSONB from the database.
func (r *Recommendations) Scan(value any) error {
	if value == nil {
		*r = nil
		return nil
	}
	return scanJSONB(r, value)
}

// Value implements the driver.Valuer interface for writing JSONB to the database.
// A nil list is stored as an empty array so the column stays NOT NULL.
func (r Recommendations) Value() (driver.Value, error) {
	if r == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(r))
}
