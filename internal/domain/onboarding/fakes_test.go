package onboarding

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/jackc/pgx/v5"
)

type memStore struct {
	mu      sync.Mutex
	records map[string]Record
}

func newMemStore() *memStore {
	return &memStore{records: map[string]Record{}}
}

func clone(r Record) Record {
	r.RequiredDocs = append([]RequiredDoc{}, r.RequiredDocs...)
	r.UploadedDocs = append([]UploadedDoc{}, r.UploadedDocs...)
	r.OtherDocs = append([]OtherDoc{}, r.OtherDocs...)
	return r
}

func (m *memStore) Create(_ context.Context, rec Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[rec.EmployeeID]; ok {
		return Record{}, ErrDuplicateRecord
	}
	m.records[rec.EmployeeID] = clone(rec)
	return clone(rec), nil
}

func (m *memStore) CreateTx(ctx context.Context, _ pgx.Tx, rec Record) (Record, error) {
	return m.Create(ctx, rec)
}

func (m *memStore) Get(_ context.Context, employeeID string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[employeeID]
	if !ok {
		return Record{}, ErrNotFound
	}
	return clone(rec), nil
}

func (m *memStore) Mutate(_ context.Context, employeeID string, init func() Record, apply func(*Record) error) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[employeeID]
	if !ok {
		if init == nil {
			return Record{}, ErrNotFound
		}
		rec = init()
	}
	rec = clone(rec)
	if err := apply(&rec); err != nil {
		return Record{}, err
	}
	m.records[employeeID] = clone(rec)
	return rec, nil
}

func (m *memStore) Summaries(_ context.Context, ids []string) (map[string]Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]Summary{}
	for _, id := range ids {
		if rec, ok := m.records[id]; ok {
			out[id] = Summary{CompletionPercent: rec.CompletionPercent, ExperienceLevel: rec.ExperienceLevel}
		}
	}
	return out, nil
}

type fakeBlobs struct {
	mu     sync.Mutex
	failOn string
	calls  atomic.Int32
	names  []string
}

func (f *fakeBlobs) Upload(_ context.Context, name, _ string, body io.Reader) (string, error) {
	f.calls.Add(1)
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	if f.failOn != "" && strings.Contains(name, f.failOn) {
		return "", errors.New("bucket unavailable")
	}
	f.mu.Lock()
	f.names = append(f.names, name)
	f.mu.Unlock()
	return "https://blobs.test/" + name, nil
}

type notice struct {
	userID, ntype, title, body string
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []notice
}

func (r *recordingNotifier) Create(_ context.Context, userID, ntype, title, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, notice{userID, ntype, title, body})
	return nil
}
