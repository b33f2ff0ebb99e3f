package favorites

// RowCount returns the number of presented rows, the placeholder included.
func (m *Model) RowCount() int {
	n := m.source.RowCount()
	if m.placeholder >= 0 {
		n++
	}
	return n
}

// DropPlaceholderIndex returns the placeholder row, or -1.
func (m *Model) DropPlaceholderIndex() int {
	return m.placeholder
}

// SetDropPlaceholderIndex shows the placeholder at index, moves it there,
// or removes it when index is -1. index is clamped to the row range.
func (m *Model) SetDropPlaceholderIndex(index int) {
	if index < -1 {
		index = -1
	}
	if n := m.source.RowCount(); index > n {
		index = n
	}
	if index == m.placeholder {
		return
	}

	old := m.placeholder
	m.placeholder = index
	switch {
	case old == -1:
		m.emit(func(l Listener) { l.RowsInserted(index, index) })
	case index == -1:
		m.emit(func(l Listener) { l.RowsRemoved(old, old) })
	default:
		m.emit(func(l Listener) { l.RowsMoved(old, old, moveDest(old, index)) })
	}
}

// toSource maps a presented row that is not the placeholder to its source row.
func (m *Model) toSource(row int) int {
	if m.placeholder >= 0 && row > m.placeholder {
		return row - 1
	}
	return row
}

// fromSource maps a source row to its presented row.
func (m *Model) fromSource(row int) int {
	if m.placeholder >= 0 && row >= m.placeholder {
		return row + 1
	}
	return row
}

// moveDest converts a final position into a destination that counts the
// moved row's old slot.
func moveDest(from, to int) int {
	if to > from {
		return to + 1
	}
	return to
}

// sourceEvents forwards source changes to listeners, keeping the
// placeholder in place between the same two source rows.
type sourceEvents struct {
	m *Model
}

func (s sourceEvents) ResultsInserted(first, last int) {
	m := s.m
	n := last - first + 1
	p := m.fromSource(first)
	if m.placeholder >= 0 && first < m.placeholder {
		m.placeholder += n
	}
	m.emit(func(l Listener) { l.RowsInserted(p, p+n-1) })

	for row := first; row <= last && m.drop != nil; row++ {
		m.checkDrop(m.source.Resource(row))
	}
}

func (s sourceEvents) ResultsRemoved(first, last int) {
	m := s.m
	n := last - first + 1
	ph := m.placeholder
	switch {
	case ph < 0:
		m.emit(func(l Listener) { l.RowsRemoved(first, last) })
	case last < ph:
		m.placeholder -= n
		m.emit(func(l Listener) { l.RowsRemoved(first, last) })
	case first >= ph:
		m.emit(func(l Listener) { l.RowsRemoved(first+1, last+1) })
	default:
		m.placeholder = -1
		m.emit(func(l Listener) { l.ModelReset() })
	}
	m.reconcile(m.source.Rows())
}

func (s sourceEvents) ResultMoved(from, to int) {
	m := s.m
	pf := m.fromSource(from)
	if m.placeholder >= 0 {
		if from < m.placeholder {
			m.placeholder--
		}
		if to < m.placeholder {
			m.placeholder++
		}
	}
	pt := m.fromSource(to)
	m.emit(func(l Listener) { l.RowsMoved(pf, pf, moveDest(pf, pt)) })
}

func (s sourceEvents) ResultsReset() {
	m := s.m
	m.placeholder = -1
	m.emit(func(l Listener) { l.ModelReset() })
	m.reconcile(m.source.Rows())
}
