// store.go
package main

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// WorkbookStore keeps uploaded tables in memory, one per upload, evicting
// the oldest once capacity is reached. Stored tables are never modified.
type WorkbookStore struct {
	mu       sync.RWMutex
	capacity int
	books    map[string]*Workbook
	order    []string
}

func NewWorkbookStore(capacity int) *WorkbookStore {
	if capacity < 1 {
		capacity = 1
	}
	return &WorkbookStore{
		capacity: capacity,
		books:    make(map[string]*Workbook),
	}
}

// Put stores t under a fresh ID and returns the stored workbook.
func (s *WorkbookStore) Put(t *Table, fileName string, size int64) *Workbook {
	wb := &Workbook{
		ID:         uuid.NewString(),
		Table:      t,
		FileName:   fileName,
		UploadTime: time.Now(),
		FileSize:   size,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.order) >= s.capacity {
		delete(s.books, s.order[0])
		s.order = s.order[1:]
	}
	s.books[wb.ID] = wb
	s.order = append(s.order, wb.ID)
	return wb
}

func (s *WorkbookStore) Get(id string) (*Workbook, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wb, ok := s.books[id]
	return wb, ok
}

func (s *WorkbookStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.books)
}
