package models

// StringPtr returns a pointer to the given string.
// Useful for optional text fields on models and payloads.
func StringPtr(s string) *string {
	return &s
}

// BoolPtr returns a pointer to the given boolean.
func BoolPtr(b bool) *bool {
	return &b
}

// IntPtr returns a pointer to the given integer.
func IntPtr(i int) *int {
	return &i
}

// Float64Ptr returns a pointer to the given float64.
func Float64Ptr(f float64) *float64 {
	return &f
}
