package ptr

// ToString returns a pointer to the given string.
func ToString(v string) *string {
	return &v
}

// ToInt returns a pointer to the given int.
func ToInt(v int) *int {
	return &v
}

// FromString dereferences the pointer, returning the empty string for nil.
func FromString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
