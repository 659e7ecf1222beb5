package service

import "github.com/noah-isme/gym-dashboard/internal/models"

// listState is the in-memory copy of one screen's collection. Every transition
// allocates a fresh slice so views handed out earlier never change underneath.
type listState[T models.Record] struct {
	items []T
	total int
}

func (s *listState[T]) reset(items []T, total int) {
	next := make([]T, len(items))
	copy(next, items)
	if total < len(next) {
		total = len(next)
	}
	s.items, s.total = next, total
}

func (s *listState[T]) insertHead(record T) {
	next := make([]T, 0, len(s.items)+1)
	next = append(next, record)
	next = append(next, s.items...)
	s.items = next
	s.total++
}

func (s *listState[T]) replaceByID(record T) bool {
	idx := s.indexOf(record.RecordID())
	if idx < 0 {
		return false
	}
	next := make([]T, len(s.items))
	copy(next, s.items)
	next[idx] = record
	s.items = next
	return true
}

func (s *listState[T]) removeByID(id int64) bool {
	idx := s.indexOf(id)
	if idx < 0 {
		return false
	}
	next := make([]T, 0, len(s.items)-1)
	next = append(next, s.items[:idx]...)
	next = append(next, s.items[idx+1:]...)
	s.items = next
	if s.total > 0 {
		s.total--
	}
	return true
}

func (s *listState[T]) find(id int64) (T, bool) {
	if idx := s.indexOf(id); idx >= 0 {
		return s.items[idx], true
	}
	var zero T
	return zero, false
}

func (s *listState[T]) indexOf(id int64) int {
	for i, item := range s.items {
		if item.RecordID() == id {
			return i
		}
	}
	return -1
}
