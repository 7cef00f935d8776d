package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/quickbill/checkout-server-go/internal/model"
)

const (
	sessionsFile = "sessions.json"
	billsFile    = "bills.json"
)

// FileStore keeps both collections in memory and rewrites the affected
// collection's snapshot file on every mutation. A snapshot is written to
// a temp file and renamed into place, so a crash mid-write leaves the
// previous snapshot intact.
type FileStore struct {
	dir string

	mu       sync.RWMutex
	sessions map[string]*model.Session
	bills    []*model.Bill
	billByID map[string]*model.Bill
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	s := &FileStore{
		dir:      dir,
		sessions: make(map[string]*model.Session),
		billByID: make(map[string]*model.Bill),
	}

	if err := s.load(); err != nil {
		return nil, err
	}

	log.Info().
		Str("dir", dir).
		Int("sessions", len(s.sessions)).
		Int("bills", len(s.bills)).
		Msg("file store loaded")

	return s, nil
}

// load reads both snapshots. A missing file is not an error: the
// collection simply starts empty.
func (s *FileStore) load() error {
	data, err := os.ReadFile(filepath.Join(s.dir, sessionsFile))
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return fmt.Errorf("read sessions snapshot: %w", err)
	default:
		if err := json.Unmarshal(data, &s.sessions); err != nil {
			return fmt.Errorf("parse sessions snapshot: %w", err)
		}
	}

	data, err = os.ReadFile(filepath.Join(s.dir, billsFile))
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return fmt.Errorf("read bills snapshot: %w", err)
	default:
		if err := json.Unmarshal(data, &s.bills); err != nil {
			return fmt.Errorf("parse bills snapshot: %w", err)
		}
	}

	for _, b := range s.bills {
		s.billByID[b.ID] = b
	}

	return nil
}

func (s *FileStore) GetSession(ctx context.Context, id string) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	return copySession(session), nil
}

func (s *FileStore) PutSession(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.sessions[session.ID]
	s.sessions[session.ID] = copySession(session)

	if err := s.writeSnapshot(sessionsFile, s.sessions); err != nil {
		// Roll the in-memory state back so memory and disk stay in step.
		if existed {
			s.sessions[session.ID] = prev
		} else {
			delete(s.sessions, session.ID)
		}
		return fmt.Errorf("persist sessions: %w", err)
	}
	return nil
}

func (s *FileStore) GetBill(ctx context.Context, id string) (*model.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bill, ok := s.billByID[id]
	if !ok {
		return nil, nil
	}
	return copyBill(bill), nil
}

func (s *FileStore) PutBill(ctx context.Context, bill *model.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.billByID[bill.ID]; exists {
		return fmt.Errorf("bill %s already exists", bill.ID)
	}

	dup := copyBill(bill)
	s.bills = append(s.bills, dup)
	s.billByID[dup.ID] = dup

	if err := s.writeSnapshot(billsFile, s.bills); err != nil {
		s.bills = s.bills[:len(s.bills)-1]
		delete(s.billByID, dup.ID)
		return fmt.Errorf("persist bills: %w", err)
	}
	return nil
}

func (s *FileStore) LastBill(ctx context.Context) (*model.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.bills) == 0 {
		return nil, nil
	}
	return copyBill(s.bills[len(s.bills)-1]), nil
}

func (s *FileStore) ListBills(ctx context.Context) ([]model.BillSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]model.BillSummary, 0, len(s.bills))
	for _, b := range s.bills {
		summaries = append(summaries, b.Summary())
	}
	return summaries, nil
}

func (s *FileStore) Close() error {
	return nil
}

// writeSnapshot serializes one full collection and swaps it into place
// atomically. Callers hold the write lock.
func (s *FileStore) writeSnapshot(name string, collection any) error {
	data, err := json.MarshalIndent(collection, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}

	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}
