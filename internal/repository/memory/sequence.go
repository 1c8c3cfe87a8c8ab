package memory

import "context"

type sequenceRepository struct {
	store *Store
}

func (r *sequenceRepository) Next(_ context.Context, scope string) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sequences[scope]++
	return s.sequences[scope], nil
}

func (r *sequenceRepository) Raise(_ context.Context, scope string, floor int64) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sequences[scope] < floor {
		s.sequences[scope] = floor
	}
	return nil
}
