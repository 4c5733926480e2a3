package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// FlexTime is a timestamp that decodes from RFC 3339 text or from a JSON
// number of Unix milliseconds, and encodes as RFC 3339.
type FlexTime struct {
	time.Time
}

// At wraps t.
func At(t time.Time) FlexTime { return FlexTime{Time: t} }

func (ft FlexTime) MarshalJSON() ([]byte, error) {
	if ft.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ft.Time.Format(time.RFC3339Nano))
}

func (ft *FlexTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) || len(data) == 0 {
		ft.Time = time.Time{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			ft.Time = time.Time{}
			return nil
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("timestamp %q: %w", s, err)
		}
		ft.Time = t
		return nil
	}
	var ms json.Number
	if err := json.Unmarshal(data, &ms); err != nil {
		return fmt.Errorf("timestamp must be a string or number: %w", err)
	}
	f, err := ms.Float64()
	if err != nil {
		return fmt.Errorf("timestamp %s: %w", ms, err)
	}
	ft.Time = time.UnixMilli(int64(f))
	return nil
}
