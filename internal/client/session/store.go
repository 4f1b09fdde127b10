package session

import "sync"

// Subscriber receives every committed state together with the monotonic
// sequence number of the commit. Subscribers are called synchronously,
// in registration order, while the commit lock is held: they must not
// dispatch back into the store and should hand long work off (the
// persistence listener drops the state into a mailbox and returns).
type Subscriber func(seq uint64, s State)

type subscription struct {
	id uint64
	fn Subscriber
}

// Store is the single source of truth for session and lock state.
// It is constructed at process start and passed to controllers
// explicitly; there is no package-level instance.
type Store struct {
	mu    sync.Mutex
	state State
	seq   uint64

	nextSubID uint64
	subs      []subscription
}

func NewStore(initial State) *Store {
	return &Store{state: initial}
}

// Dispatch applies the action atomically and notifies subscribers.
// Actions commit in dispatch order; two actions' effects never
// interleave.
func (s *Store) Dispatch(a Action) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = reduce(s.state, a)
	s.seq++
	for _, sub := range s.subs {
		sub.fn(s.seq, s.state)
	}
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Subscriber) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSubID++
	id := s.nextSubID
	s.subs = append(s.subs, subscription{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Seq returns the sequence number of the last committed action.
func (s *Store) Seq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// User is a read-only selector for the current user session.
func (s *Store) User() UserSession { return s.State().User }

// Lock is a read-only selector for the current lock status.
func (s *Store) Lock() LockStatus { return s.State().Lock }

// Auth is a read-only selector for the current auth request state.
func (s *Store) Auth() AuthRequestState { return s.State().Auth }
