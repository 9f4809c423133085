package rendercontext

// Releaser owns GPU objects that must be deleted exactly once.
type Releaser interface {
	Release()
}

// Store tracks releasers in acquisition order.
type Store struct {
	held []Releaser
}

func NewStore() *Store {
	return &Store{}
}

// Track registers r. Tracking r twice is ignored.
func (s *Store) Track(r Releaser) {
	for _, h := range s.held {
		if h == r {
			return
		}
	}
	s.held = append(s.held, r)
}

func (s *Store) Len() int { return len(s.held) }

// ReleaseAll releases in reverse acquisition order and forgets everything.
func (s *Store) ReleaseAll() {
	for i := len(s.held) - 1; i >= 0; i-- {
		s.held[i].Release()
	}
	s.held = nil
}
