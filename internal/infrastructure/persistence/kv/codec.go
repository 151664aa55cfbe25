package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Literal strings that older clients wrote in place of a missing value.
const (
	SentinelUndefined = "undefined"
	SentinelNull      = "null"
)

var (
	// ErrSentinel marks a stored value that only says "nothing here".
	ErrSentinel = errors.New("stored value is a sentinel literal")
	// ErrMalformed marks a stored value that is not valid JSON for the target type.
	ErrMalformed = errors.New("stored value is malformed")
)

// IsSentinel reports whether raw is empty or one of the sentinel literals,
// with or without JSON string quoting.
func IsSentinel(raw string) bool {
	t := strings.TrimSpace(raw)
	t = strings.Trim(t, `"`)
	return t == "" || t == SentinelUndefined || t == SentinelNull
}

// Encode serializes v for storage
func Encode(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode: %w", err)
	}
	return string(b), nil
}

// Decode turns a stored value into T. Sentinels yield ErrSentinel and
// unparseable input yields ErrMalformed; both mean "absent" to callers.
func Decode[T any](raw string) (T, error) {
	var out T
	if IsSentinel(raw) {
		return out, ErrSentinel
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return out, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return out, nil
}

// Load reads key and decodes it. ok is false whenever the value is absent for
// any reason; err then says why when the reason is worth logging. A missing
// key is not worth logging and returns a nil error.
func Load[T any](ctx context.Context, s Store, key string) (value T, ok bool, err error) {
	raw, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return value, false, nil
	}
	if err != nil {
		return value, false, err
	}
	value, err = Decode[T](raw)
	if err != nil {
		return value, false, err
	}
	return value, true, nil
}

// LoadString is Load for plain strings, accepting values written without JSON
// quoting as well as quoted ones.
func LoadString(ctx context.Context, s Store, key string) (string, bool, error) {
	raw, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if IsSentinel(raw) {
		return "", false, ErrSentinel
	}
	var out string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		out = strings.TrimSpace(raw)
	}
	if IsSentinel(out) {
		return "", false, ErrSentinel
	}
	return out, true, nil
}

// Save encodes v and writes it under key
func Save(ctx context.Context, s Store, key string, v any) error {
	raw, err := Encode(v)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, raw)
}
