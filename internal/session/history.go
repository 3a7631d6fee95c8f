package session

import "github.com/KaramelBytes/gymbmi/internal/record"

// History is the append-only list of calculator results of one session.
type History struct {
	rows []record.Person
}

// Append adds p at the end.
func (h *History) Append(p record.Person) {
	h.rows = append(h.rows, p)
}

// Rows returns a copy of the entries in insertion order.
func (h *History) Rows() []record.Person {
	out := make([]record.Person, len(h.rows))
	copy(out, h.rows)
	return out
}

// Len returns the number of entries.
func (h *History) Len() int { return len(h.rows) }

// Table returns the entries as a table with the history column order.
func (h *History) Table() *record.Table {
	return record.NewTable("history", record.HistoryColumns, h.Rows())
}

// Clear drops every entry. Only the end of the owning session calls it.
func (h *History) Clear() { h.rows = nil }
