package domain

import "iter"

// Option is a single entry of an option mapping.
// A Flag option carries no value and renders as the bare key.
type Option struct {
	Key   string
	Value string
	Flag  bool
}

// Options is an insertion-ordered option mapping.
// Setting an existing key replaces its value but keeps its original position,
// so rendered command lines stay stable across runs.
// The zero value and a nil *Options are both valid empty mappings for reads.
type Options struct {
	keys   []string
	values map[string]Option
}

// NewOptions creates an empty mapping.
func NewOptions() *Options {
	return &Options{values: make(map[string]Option)}
}

// OptionsFrom builds a mapping from alternating key/value pairs.
func OptionsFrom(pairs ...string) *Options {
	o := NewOptions()
	for i := 0; i+1 < len(pairs); i += 2 {
		o.Set(pairs[i], pairs[i+1])
	}
	return o
}

func (o *Options) put(opt Option) {
	if o.values == nil {
		o.values = make(map[string]Option)
	}
	if _, ok := o.values[opt.Key]; !ok {
		o.keys = append(o.keys, opt.Key)
	}
	o.values[opt.Key] = opt
}

// Set assigns value to key.
func (o *Options) Set(key, value string) {
	o.put(Option{Key: key, Value: value})
}

// SetFlag records key as a valueless flag.
func (o *Options) SetFlag(key string) {
	o.put(Option{Key: key, Flag: true})
}

// Append extends the current value of key with a space separated value.
// A missing or flag key is set to value.
func (o *Options) Append(key, value string) {
	cur, ok := o.Get(key)
	if !ok || cur == "" {
		o.Set(key, value)
		return
	}
	o.Set(key, cur+" "+value)
}

// Get returns the value stored under key.
func (o *Options) Get(key string) (string, bool) {
	if o == nil {
		return "", false
	}
	opt, ok := o.values[key]
	return opt.Value, ok
}

// Has reports whether key is present.
func (o *Options) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Delete removes key.
func (o *Options) Delete(key string) {
	if o == nil {
		return
	}
	if _, ok := o.values[key]; !ok {
		return
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of entries.
func (o *Options) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// All yields entries in insertion order.
func (o *Options) All() iter.Seq[Option] {
	return func(yield func(Option) bool) {
		if o == nil {
			return
		}
		for _, k := range o.keys {
			if !yield(o.values[k]) {
				return
			}
		}
	}
}

// Merge copies every entry of other into o; entries of other win.
func (o *Options) Merge(other *Options) {
	for opt := range other.All() {
		o.put(opt)
	}
}

// MergeAppend appends every entry of other to the matching entry of o.
func (o *Options) MergeAppend(other *Options) {
	for opt := range other.All() {
		if opt.Flag {
			o.SetFlag(opt.Key)
			continue
		}
		o.Append(opt.Key, opt.Value)
	}
}

// SetDefault assigns value only when key is absent.
func (o *Options) SetDefault(key, value string) {
	if !o.Has(key) {
		o.Set(key, value)
	}
}

// Clone returns an independent copy.
func (o *Options) Clone() *Options {
	c := NewOptions()
	c.Merge(o)
	return c
}
