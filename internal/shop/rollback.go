package shop

// withRollback applies optimistic to the mirror, runs commit and restores
// the pre-call snapshot when commit fails. A nil result from a successful
// commit keeps the optimistic state.
func withRollback[T any](m *mirror[T], optimistic func([]T) []T, commit func() ([]T, error)) error {
	before, ticket := m.begin(optimistic)

	result, err := commit()
	if err != nil {
		m.restore(ticket, before)
		return err
	}

	if result != nil {
		m.apply(ticket, result)
	}
	return nil
}
