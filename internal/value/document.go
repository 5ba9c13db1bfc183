package value

import "strings"

// Document is an ordered mapping from string keys to values.
// Keys are unique; overwriting a key keeps its original position.
//
// A Document is owned by whoever holds it and is not safe for concurrent
// mutation.
type Document struct {
	keys []string
	m    map[string]Value
}

func (*Document) Kind() Kind { return KindDocument }
func (*Document) value()     {}

// Field is a key/value pair for ordered Document construction.
type Field struct {
	Key   string
	Value Value
}

// F is a shorthand for Field.
// Example: NewDocument(F("name", String("cart")), F("count", Int32(5)))
func F(key string, v Value) Field {
	return Field{Key: key, Value: v}
}

// NewDocument creates a Document from fields, in order. A repeated key
// overwrites the earlier value in place.
func NewDocument(fields ...Field) *Document {
	d := &Document{
		keys: make([]string, 0, len(fields)),
		m:    make(map[string]Value, len(fields)),
	}
	for _, f := range fields {
		d.Set(f.Key, f.Value)
	}
	return d
}

// Len returns the number of keys. A nil Document is empty.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.keys)
}

// Keys returns the keys in order. The returned slice is a copy.
func (d *Document) Keys() []string {
	if d == nil {
		return []string{}
	}
	return append([]string(nil), d.keys...)
}

// Get returns the value stored under key.
func (d *Document) Get(key string) (Value, bool) {
	if d == nil {
		return nil, false
	}
	v, ok := d.m[key]
	return v, ok
}

// Has reports whether key is present.
func (d *Document) Has(key string) bool {
	_, ok := d.Get(key)
	return ok
}

// Set stores v under key. New keys are appended; existing keys keep their
// position. A nil v is stored as Null.
func (d *Document) Set(key string, v Value) {
	if v == nil {
		v = Null{}
	}
	if d.m == nil {
		d.m = make(map[string]Value)
	}
	if _, exists := d.m[key]; !exists {
		d.keys = append(d.keys, key)
	}
	d.m[key] = v
}

// Prepend stores v under key as the first entry, moving key if present.
func (d *Document) Prepend(key string, v Value) {
	if v == nil {
		v = Null{}
	}
	d.Delete(key)
	if d.m == nil {
		d.m = make(map[string]Value)
	}
	d.keys = append([]string{key}, d.keys...)
	d.m[key] = v
}

// Delete removes key and reports whether it was present.
func (d *Document) Delete(key string) bool {
	if d == nil {
		return false
	}
	if _, ok := d.m[key]; !ok {
		return false
	}
	delete(d.m, key)
	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
	return true
}

// Fields returns the entries in order.
func (d *Document) Fields() []Field {
	if d == nil {
		return []Field{}
	}
	fields := make([]Field, len(d.keys))
	for i, k := range d.keys {
		fields[i] = Field{Key: k, Value: d.m[k]}
	}
	return fields
}

// Lookup resolves a dot path such as "address.city". Every segment but the
// last must name a nested Document.
func (d *Document) Lookup(path string) (Value, bool) {
	cur := d
	segments := strings.Split(path, ".")
	for i, seg := range segments {
		v, ok := cur.Get(seg)
		if !ok {
			return nil, false
		}
		if i == len(segments)-1 {
			return v, true
		}
		next, isDoc := v.(*Document)
		if !isDoc {
			return nil, false
		}
		cur = next
	}
	return nil, false
}

// Clone returns a deep copy of d.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	c := &Document{
		keys: append([]string(nil), d.keys...),
		m:    make(map[string]Value, len(d.m)),
	}
	for k, v := range d.m {
		c.m[k] = cloneValue(v)
	}
	return c
}

func cloneValue(v Value) Value {
	switch t := v.(type) {
	case *Document:
		return t.Clone()
	case Array:
		out := make(Array, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case Binary:
		return append(Binary(nil), t...)
	default:
		return v
	}
}
