package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/enrollment_backend/models"
)

// MemoryStore is an in-process EnrollmentStore with the same lookup rules as
// the Mongo repository. Err, when set, is returned by every call.
type MemoryStore struct {
	mu      sync.Mutex
	records []models.EnrollmentRecord
	Err     error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Create(_ context.Context, rec *models.EnrollmentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	m.records = append(m.records, *rec)
	return nil
}

func (m *MemoryStore) FindActiveByMobile(_ context.Context, mobile string, now time.Time) ([]models.EnrollmentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	var out []models.EnrollmentRecord
	for _, r := range m.records {
		if r.Mobile == mobile && r.CodeExpiresAt.After(now) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > maxActiveCandidates {
		out = out[:maxActiveCandidates]
	}
	return out, nil
}

func (m *MemoryStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.EnrollmentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if i := m.indexOf(id); i >= 0 {
		rec := m.records[i]
		return &rec, nil
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) MarkVerified(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	i := m.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	m.records[i].IsVerified = true
	m.records[i].UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStore) MarkPaid(_ context.Context, email, mobile string, upd models.PaymentUpdate) (*models.EnrollmentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	idx := -1
	for i, r := range m.records {
		if r.Email == email && r.Mobile == mobile && (idx < 0 || r.CreatedAt.After(m.records[idx].CreatedAt)) {
			idx = i
		}
	}
	if idx < 0 {
		return nil, ErrNotFound
	}
	if m.records[idx].IsPaid() {
		out := m.records[idx]
		return &out, ErrAlreadyPaid
	}

	paymentID, orderID, amount := upd.PaymentID, upd.OrderID, upd.AmountPaid
	rec := &m.records[idx]
	rec.PaymentID = &paymentID
	rec.OrderID = &orderID
	rec.AmountPaid = &amount
	rec.PaymentStatus = models.PaymentCompleted
	rec.IsVerified = true
	rec.UpdatedAt = time.Now()

	out := *rec
	return &out, nil
}

func (m *MemoryStore) Ping(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Err
}

// All returns a copy of every stored record in insertion order.
func (m *MemoryStore) All() []models.EnrollmentRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.EnrollmentRecord(nil), m.records...)
}

func (m *MemoryStore) indexOf(id primitive.ObjectID) int {
	for i := range m.records {
		if m.records[i].ID == id {
			return i
		}
	}
	return -1
}
