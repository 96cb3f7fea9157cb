package bencode

import "slices"

// Dict is an insertion-ordered dictionary keyed by byte strings. Keys are
// unique: setting an existing key replaces its value in place.
type Dict struct {
	keys   []string
	values map[string]Value
}

func NewDict() *Dict {
	return &Dict{values: make(map[string]Value)}
}

func (d *Dict) Set(key string, v Value) {
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = v
}

func (d *Dict) Get(key string) (Value, bool) {
	v, ok := d.values[key]
	return v, ok
}

func (d *Dict) Has(key string) bool {
	_, ok := d.values[key]
	return ok
}

func (d *Dict) Delete(key string) {
	if _, ok := d.values[key]; !ok {
		return
	}
	delete(d.values, key)
	d.keys = slices.DeleteFunc(d.keys, func(k string) bool { return k == key })
}

// Keys returns the keys in insertion order.
func (d *Dict) Keys() []string {
	return slices.Clone(d.keys)
}

func (d *Dict) Len() int {
	return len(d.keys)
}

func (d *Dict) Clone() *Dict {
	c := &Dict{
		keys:   slices.Clone(d.keys),
		values: make(map[string]Value, len(d.values)),
	}
	for k, v := range d.values {
		c.values[k] = v.Clone()
	}
	return c
}

func (d *Dict) GetInt(key string) (int64, bool) {
	v, ok := d.values[key]
	if !ok {
		return 0, false
	}
	return v.AsInt()
}

func (d *Dict) GetString(key string) (string, bool) {
	v, ok := d.values[key]
	if !ok {
		return "", false
	}
	return v.AsString()
}

func (d *Dict) GetList(key string) ([]Value, bool) {
	v, ok := d.values[key]
	if !ok {
		return nil, false
	}
	return v.AsList()
}

func (d *Dict) GetDict(key string) (*Dict, bool) {
	v, ok := d.values[key]
	if !ok {
		return nil, false
	}
	return v.AsDict()
}
