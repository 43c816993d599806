package kml

import "strings"

// ExtendedData is an ordered string mapping with unique keys.
// The zero value is empty and ready to use.
type ExtendedData struct {
	keys   []string
	values map[string]string
}

// Set stores value under key. New keys are appended; existing keys keep their position.
func (x *ExtendedData) Set(key, value string) {
	if x.values == nil {
		x.values = make(map[string]string)
	}
	if _, ok := x.values[key]; !ok {
		x.keys = append(x.keys, key)
	}
	x.values[key] = value
}

// Get returns the value stored under key.
func (x *ExtendedData) Get(key string) (string, bool) {
	v, ok := x.values[key]
	return v, ok
}

// Delete removes key.
func (x *ExtendedData) Delete(key string) {
	if _, ok := x.values[key]; !ok {
		return
	}
	delete(x.values, key)
	for i, k := range x.keys {
		if k == key {
			x.keys = append(x.keys[:i], x.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (x *ExtendedData) Keys() []string {
	out := make([]string, len(x.keys))
	copy(out, x.keys)
	return out
}

// Len returns the number of entries.
func (x *ExtendedData) Len() int {
	return len(x.keys)
}

// Map returns a copy of the entries as a plain map.
func (x *ExtendedData) Map() map[string]string {
	out := make(map[string]string, len(x.values))
	for k, v := range x.values {
		out[k] = v
	}
	return out
}

// Clone returns an independent copy.
func (x *ExtendedData) Clone() ExtendedData {
	if x.Len() == 0 {
		return ExtendedData{}
	}
	return ExtendedData{keys: x.Keys(), values: x.Map()}
}

// Text renders the entries as "key=value<br>" lines, or "" when empty.
func (x *ExtendedData) Text() string {
	var sb strings.Builder
	for _, k := range x.keys {
		sb.WriteString(k)
		sb.WriteString("=")
		sb.WriteString(x.values[k])
		sb.WriteString("<br>\n")
	}
	return sb.String()
}
