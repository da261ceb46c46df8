package domain

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Fields is a JSON-safe snapshot: field name to scalar, list or nested map.
type Fields map[string]any

// Clone returns a deep copy so callers can rewrite values without touching the original.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Fields:
		return t.Clone()
	case map[string]any:
		return map[string]any(Fields(t).Clone())
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	default:
		return v
	}
}

// NormalizeFields rewrites every value into the one textual form used for hashing and storage:
// times as RFC3339Nano UTC, decimals and uuids as strings, numbers as json.Number.
func NormalizeFields(f Fields) (Fields, error) {
	if f == nil {
		return nil, nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		nv, err := normalize(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		out[k] = nv
	}
	return out, nil
}

func normalize(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string, bool, json.Number:
		return t, nil
	case int:
		return json.Number(strconv.FormatInt(int64(t), 10)), nil
	case int8:
		return json.Number(strconv.FormatInt(int64(t), 10)), nil
	case int16:
		return json.Number(strconv.FormatInt(int64(t), 10)), nil
	case int32:
		return json.Number(strconv.FormatInt(int64(t), 10)), nil
	case int64:
		return json.Number(strconv.FormatInt(t, 10)), nil
	case uint:
		return json.Number(strconv.FormatUint(uint64(t), 10)), nil
	case uint8:
		return json.Number(strconv.FormatUint(uint64(t), 10)), nil
	case uint16:
		return json.Number(strconv.FormatUint(uint64(t), 10)), nil
	case uint32:
		return json.Number(strconv.FormatUint(uint64(t), 10)), nil
	case uint64:
		return json.Number(strconv.FormatUint(t, 10)), nil
	case float32:
		return formatFloat(float64(t), 32), nil
	case float64:
		return formatFloat(t, 64), nil
	case time.Time:
		return FormatTimestamp(t), nil
	case *time.Time:
		if t == nil {
			return nil, nil
		}
		return FormatTimestamp(*t), nil
	case decimal.Decimal:
		return t.String(), nil
	case *decimal.Decimal:
		if t == nil {
			return nil, nil
		}
		return t.String(), nil
	case uuid.UUID:
		return t.String(), nil
	case *uuid.UUID:
		if t == nil {
			return nil, nil
		}
		return t.String(), nil
	case Fields:
		return NormalizeFields(t)
	case map[string]any:
		nf, err := NormalizeFields(Fields(t))
		return map[string]any(nf), err
	case []any:
		out := make([]any, len(t))
		for i := range t {
			nv, err := normalize(t[i])
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		return out, nil
	case []string:
		out := make([]any, len(t))
		for i := range t {
			out[i] = t[i]
		}
		return out, nil
	case fmt.Stringer:
		return t.String(), nil
	default:
		// Anything else goes through its JSON form and back.
		raw, err := json.Marshal(t)
		if err != nil {
			return nil, fmt.Errorf("unsupported snapshot value %T: %w", v, err)
		}
		var decoded any
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&decoded); err != nil {
			return nil, err
		}
		return normalize(decoded)
	}
}

func formatFloat(f float64, bits int) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'f', -1, bits)
	}
	return json.Number(strconv.FormatFloat(f, 'f', -1, bits))
}

// FormatTimestamp is the single textual rendering of time values in snapshots and hashes.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// FormatDate renders a calendar date as ISO-8601.
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

// Canonicalize renders v as sorted-key JSON without HTML escaping.
func Canonicalize(v any) ([]byte, error) {
	nv, err := normalize(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(nv); err != nil {
		return nil, fmt.Errorf("canonicalize: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// ComputeRecordHash returns hex(sha256(previousHash || canonical(payload))).
func ComputeRecordHash(previousHash string, payload any) (string, error) {
	canonical, err := Canonicalize(payload)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	h.Write([]byte(previousHash))
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// EncodeFields marshals a snapshot for storage; nil stays SQL NULL.
func EncodeFields(f Fields) ([]byte, error) {
	if f == nil {
		return nil, nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(f); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// DecodeFields parses a stored snapshot, keeping numbers as json.Number so they re-hash identically.
func DecodeFields(raw []byte) (Fields, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var f Fields
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&f); err != nil {
		return nil, err
	}
	return f, nil
}
