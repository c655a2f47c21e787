package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ByteSize is a size in bytes that parses suffixes such as 512K, 10M or 1G
// (powers of 1024).
type ByteSize int64

// ParseByteSize parses a plain byte count or a number with a K, M or G
// suffix. A trailing "B" or "iB" is accepted.
func ParseByteSize(s string) (ByteSize, error) {
	str := strings.ToUpper(strings.TrimSpace(s))
	str = strings.TrimSuffix(strings.TrimSuffix(str, "B"), "I")
	if str == "" {
		return 0, fmt.Errorf("invalid size %q", s)
	}

	mult := int64(1)
	switch str[len(str)-1] {
	case 'K':
		mult = 1 << 10
	case 'M':
		mult = 1 << 20
	case 'G':
		mult = 1 << 30
	}
	if mult > 1 {
		str = str[:len(str)-1]
	}

	n, err := strconv.ParseInt(strings.TrimSpace(str), 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	return ByteSize(n * mult), nil
}

func (b ByteSize) String() string {
	switch {
	case b > 0 && b%(1<<30) == 0:
		return strconv.FormatInt(int64(b>>30), 10) + "G"
	case b > 0 && b%(1<<20) == 0:
		return strconv.FormatInt(int64(b>>20), 10) + "M"
	case b > 0 && b%(1<<10) == 0:
		return strconv.FormatInt(int64(b>>10), 10) + "K"
	default:
		return strconv.FormatInt(int64(b), 10)
	}
}

// Set implements pflag.Value
func (b *ByteSize) Set(s string) error {
	v, err := ParseByteSize(s)
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// Type implements pflag.Value
func (b *ByteSize) Type() string { return "size" }

// UnmarshalText accepts the same forms as the flag.
func (b *ByteSize) UnmarshalText(text []byte) error {
	return b.Set(string(text))
}

// UnmarshalJSON accepts a number of bytes or a string with a suffix.
func (b *ByteSize) UnmarshalJSON(data []byte) error {
	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		*b = ByteSize(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid size %s", data)
	}
	return b.Set(s)
}

// Duration is a time.Duration written as "30s" or "5m" in config files.
type Duration time.Duration

func (d Duration) String() string { return time.Duration(d).String() }

// Set implements pflag.Value
func (d *Duration) Set(s string) error {
	v, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Type implements pflag.Value
func (d *Duration) Type() string { return "duration" }

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	return d.Set(string(text))
}
