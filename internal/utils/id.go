package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexUint is an id decoded from either a JSON number or a numeric string.
// null and "" decode to zero.
type FlexUint uint

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexUint) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}

	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			*f = 0
			return nil
		}
	}

	v, err := strconv.ParseUint(raw, 10, 0)
	if err != nil {
		return fmt.Errorf("invalid id %s", data)
	}
	*f = FlexUint(v)
	return nil
}
