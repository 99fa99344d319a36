package form

// Answers maps field names to their last committed value.
type Answers map[string]string

// Clone returns an independent copy. A nil receiver yields an empty set.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Equal reports whether both sets hold the same entries.
func (a Answers) Equal(other Answers) bool {
	if len(a) != len(other) {
		return false
	}
	for k, v := range a {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}
