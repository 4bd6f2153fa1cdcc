package conflict

import "slices"

// Group accumulates the errors attributed to one set of dorms.
type Group struct {
	// Contacts holds one deduplicated contact address per responsible
	// dorm, in append order.
	Contacts []string

	// Messages is the append-ordered list of human-readable errors.
	Messages []string
}

// Report maps a canonical, comma-joined dorm-set key to its error group.
// Insertion order is preserved for rendering.
type Report struct {
	keys   []string
	groups map[string]*Group
}

// NewReport returns an empty report.
func NewReport() *Report {
	return &Report{groups: make(map[string]*Group)}
}

// Keys returns the group keys in insertion order.
func (r *Report) Keys() []string {
	return r.keys
}

// Get returns the group for a key, or nil.
func (r *Report) Get(key string) *Group {
	return r.groups[key]
}

// Len returns the number of groups.
func (r *Report) Len() int {
	return len(r.groups)
}

// Empty reports whether no errors were recorded.
func (r *Report) Empty() bool {
	return len(r.groups) == 0
}

// add appends a message under key, creating the group with the given
// contacts on first use.
func (r *Report) add(key string, contacts []string, msg string) {
	g, ok := r.groups[key]
	if !ok {
		g = &Group{Contacts: contacts}
		r.groups[key] = g
		r.keys = append(r.keys, key)
	}
	g.Messages = append(g.Messages, msg)
}

// MergeInto folds the source group into the target group: messages are
// appended, contacts are deduplicated, and the source key is removed. Both
// groups may have accumulated entries independently before alias resolution
// was applied consistently, so the merge must tolerate either side being
// absent.
func (r *Report) MergeInto(target, source string) {
	if target == source {
		return
	}
	src, ok := r.groups[source]
	if !ok {
		return
	}

	dst, ok := r.groups[target]
	if !ok {
		// Target never existed: the source group simply changes key,
		// keeping its position.
		r.groups[target] = src
		for i, k := range r.keys {
			if k == source {
				r.keys[i] = target
				break
			}
		}
		delete(r.groups, source)
		return
	}

	dst.Messages = append(dst.Messages, src.Messages...)
	for _, c := range src.Contacts {
		if !slices.Contains(dst.Contacts, c) {
			dst.Contacts = append(dst.Contacts, c)
		}
	}

	delete(r.groups, source)
	r.keys = slices.DeleteFunc(r.keys, func(k string) bool { return k == source })
}
