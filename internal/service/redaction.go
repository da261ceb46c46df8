package service

import (
	"strings"

	"clinic-ledger/internal/core/domain"
)

// RedactedValue replaces sensitive snapshot values in exports.
const RedactedValue = "[REDACTED]"

// Redactor masks a configured deny-list of field names, case-insensitively and at any depth.
type Redactor struct {
	fields map[string]struct{}
}

// NewRedactor creates a Redactor for the given field names.
func NewRedactor(fields []string) *Redactor {
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" {
			set[f] = struct{}{}
		}
	}
	return &Redactor{fields: set}
}

// Redact returns a masked copy of f. f itself is never modified.
func (r *Redactor) Redact(f domain.Fields) domain.Fields {
	if f == nil {
		return nil
	}
	return domain.Fields(r.redactMap(f))
}

// RedactEntry masks Before and After independently.
func (r *Redactor) RedactEntry(e domain.LedgerEntry) domain.LedgerEntry {
	e.Before = r.Redact(e.Before)
	e.After = r.Redact(e.After)
	return e
}

func (r *Redactor) redactMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if _, deny := r.fields[strings.ToLower(k)]; deny {
			out[k] = RedactedValue
			continue
		}
		out[k] = r.redactValue(v)
	}
	return out
}

func (r *Redactor) redactValue(v any) any {
	switch t := v.(type) {
	case domain.Fields:
		return domain.Fields(r.redactMap(t))
	case map[string]any:
		return r.redactMap(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = r.redactValue(t[i])
		}
		return out
	default:
		return v
	}
}
