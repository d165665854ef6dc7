package analyze

import "sort"

// Selection is the set of paths the user has marked for deletion.
type Selection struct {
	paths map[string]struct{}
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{paths: make(map[string]struct{})}
}

// Toggle adds path if absent and removes it if present. It reports whether
// path is marked afterwards.
func (s *Selection) Toggle(path string) bool {
	if _, ok := s.paths[path]; ok {
		delete(s.paths, path)
		return false
	}
	s.paths[path] = struct{}{}
	return true
}

// Contains reports whether path is marked.
func (s *Selection) Contains(path string) bool {
	_, ok := s.paths[path]
	return ok
}

// Len returns the number of marked paths.
func (s *Selection) Len() int {
	return len(s.paths)
}

// Paths returns the marked paths in lexical order.
func (s *Selection) Paths() []string {
	out := make([]string, 0, len(s.paths))
	for p := range s.paths {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Clear unmarks everything.
func (s *Selection) Clear() {
	clear(s.paths)
}
