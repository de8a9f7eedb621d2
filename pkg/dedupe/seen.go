// Package dedupe tracks which candidate URLs a run has already accepted.
package dedupe

// SeenURLSet records accepted URLs by exact string equality. It is owned by
// a single run and is not safe for concurrent use.
type SeenURLSet struct {
	urls map[string]struct{}
}

// NewSeenURLSet creates an empty set
func NewSeenURLSet() *SeenURLSet {
	return &SeenURLSet{urls: make(map[string]struct{})}
}

// Accept records url and returns true the first time it is seen; later calls
// with an equal string return false and change nothing.
func (s *SeenURLSet) Accept(url string) bool {
	if _, ok := s.urls[url]; ok {
		return false
	}
	s.urls[url] = struct{}{}
	return true
}

// Len returns the number of accepted URLs
func (s *SeenURLSet) Len() int {
	return len(s.urls)
}
