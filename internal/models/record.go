package models

// Record is one serialized entity row: a flat map of column name to value.
// Foreign keys are plain integers and date/time values are ISO-8601 strings,
// so a record survives a JSON round trip without any live references.
type Record map[string]any

// ID returns the record's primary key. The second return value is false when
// the id field is absent, null, or not a number.
func (r Record) ID() (int64, bool) {
	return r.Ref("id")
}

// Ref returns the integer value of a foreign-key field. The second return
// value is false when the field is absent, null, or not a number. JSON
// decoding yields float64 for numbers, the sqlite driver yields int64; both
// are accepted.
func (r Record) Ref(field string) (int64, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return 0, false
	}
	return asInt64(v)
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}
