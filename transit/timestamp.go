package transit

import (
	"bytes"
	"strconv"
	"time"
)

// Timestamp refers to the JSON string of epoch milliseconds
type Timestamp struct {
	time.Time
}

// NewTimestamp returns the current time truncated to milliseconds
func NewTimestamp() *Timestamp {
	return &Timestamp{Time: time.Now().Truncate(time.Millisecond)}
}

// Add returns a new timestamp
func (t Timestamp) Add(d time.Duration) *Timestamp {
	return &Timestamp{Time: t.Time.Add(d)}
}

// MarshalJSON implements json.Marshaler
func (t Timestamp) MarshalJSON() ([]byte, error) {
	buf := make([]byte, 0, 16)
	buf = append(buf, '"')
	buf = strconv.AppendInt(buf, t.Time.UnixMilli(), 10)
	buf = append(buf, '"')
	return buf, nil
}

// UnmarshalJSON implements json.Unmarshaler
func (t *Timestamp) UnmarshalJSON(input []byte) error {
	i, err := strconv.ParseInt(string(bytes.Trim(input, `"`)), 10, 64)
	if err != nil {
		return err
	}
	t.Time = time.UnixMilli(i).UTC()
	return nil
}

// String implements Stringer interface
func (t Timestamp) String() string {
	return strconv.FormatInt(t.Time.UnixMilli(), 10)
}
