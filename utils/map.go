package utils

// Map applies f to every element of src, preserving order.
func Map[T, U any](src []T, f func(T) U) []U {
	us := make([]U, len(src))
	for i := range src {
		us[i] = f(src[i])
	}
	return us
}

func Ptr[T any](v T) *T {
	return &v
}
