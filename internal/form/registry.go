package form

import (
	"errors"
	"reflect"
)

// ErrHostNotComparable is returned by Bind for hosts that cannot identify a
// binding, such as struct values holding slices. Pointer hosts always can.
var ErrHostNotComparable = errors.New("form host is not comparable")

// Registry holds one controller per host. Binding the same host twice
// returns the existing controller without rendering again.
type Registry struct {
	bound map[Host]*Controller
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{bound: make(map[Host]*Controller)}
}

// Bind returns the controller owned by host, creating it on first use.
// Options only apply to the first call.
func (r *Registry) Bind(host Host, opts ...Option) (*Controller, error) {
	if !keyable(host) {
		return nil, ErrHostNotComparable
	}
	if c, ok := r.bound[host]; ok {
		return c, nil
	}
	c, err := New(host, opts...)
	if err != nil {
		return nil, err
	}
	r.bound[host] = c
	return c, nil
}

// Release forgets the controller owned by host.
func (r *Registry) Release(host Host) {
	if keyable(host) {
		delete(r.bound, host)
	}
}

// Len returns the number of bound hosts.
func (r *Registry) Len() int {
	return len(r.bound)
}

// keyable checks the dynamic value, so a struct host holding a slice
// inside an interface field is caught too.
func keyable(host Host) bool {
	return host != nil && reflect.ValueOf(host).Comparable()
}
