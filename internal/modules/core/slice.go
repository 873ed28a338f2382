package core

func Map[TSource any, TResult any](source []TSource, m func(TSource) TResult) []TResult {
	results := make([]TResult, 0, len(source))
	for _, s := range source {
		results = append(results, m(s))
	}
	return results
}

// Filter keeps the elements matching keep, in order. The result is never nil.
func Filter[T any](source []T, keep func(T) bool) []T {
	results := make([]T, 0, len(source))
	for _, s := range source {
		if keep(s) {
			results = append(results, s)
		}
	}
	return results
}

func Contains[T any](source []T, target T, equal func(T, T) bool) bool {
	for _, s := range source {
		if equal(s, target) {
			return true
		}
	}
	return false
}
