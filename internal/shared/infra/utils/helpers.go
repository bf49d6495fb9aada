package utils

// Ternary es un helper genérico para expresiones condicionales en una línea.
func Ternary[T any](condition bool, ifTrue, ifFalse T) T {
	if condition {
		return ifTrue
	}
	return ifFalse
}
