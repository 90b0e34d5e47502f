package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrUnsafeItem = errors.New("string slice items can't contain a comma")

// StringSlice stores a list of strings in a single comma separated column
type StringSlice []string

func (StringSlice) GormDataType() string {
	return "text"
}

// Value implements the driver.Valuer interface.
// No element may include a comma.
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "", nil
	}

	for _, v := range s {
		if strings.Contains(v, ",") {
			return "", fmt.Errorf("%w: %q", ErrUnsafeItem, v)
		}
	}

	return strings.Join(s, ","), nil
}

// Scan implements the sql.Scanner interface.
func (s *StringSlice) Scan(value any) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	var str string
	switch v := value.(type) {
	case string:
		str = v
	case []byte:
		str = string(v)
	default:
		return fmt.Errorf("failed to scan StringSlice, %v", value)
	}

	if str == "" {
		*s = StringSlice{}
	} else {
		*s = strings.Split(str, ",")
	}

	return nil
}

// MarshalJSON always renders a list, never null
func (s StringSlice) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}

	return json.Marshal([]string(s))
}
