package registry

import (
	"context"
	"sync"

	"github.com/heartmarshall/civic-registry/internal/domain"
)

var _ recordRepo = &recordRepoMock{}

type recordRepoMock struct {
	GetByIDFunc  func(ctx context.Context, id string) (domain.ServiceRecord, error)
	SnapshotFunc func(ctx context.Context) []domain.ServiceRecord
	CreateFunc   func(ctx context.Context, attrs domain.Attributes) (domain.ServiceRecord, error)
	UpdateFunc   func(ctx context.Context, id string, fn func(domain.ServiceRecord) (domain.ServiceRecord, error)) (domain.ServiceRecord, error)
	DeleteFunc   func(ctx context.Context, id string) error

	calls struct {
		GetByID []struct {
			Ctx context.Context
			ID  string
		}
		Snapshot []struct {
			Ctx context.Context
		}
		Create []struct {
			Ctx   context.Context
			Attrs domain.Attributes
		}
		Update []struct {
			Ctx context.Context
			ID  string
		}
		Delete []struct {
			Ctx context.Context
			ID  string
		}
	}
	lock sync.RWMutex
}

func (mock *recordRepoMock) GetByID(ctx context.Context, id string) (domain.ServiceRecord, error) {
	if mock.GetByIDFunc == nil {
		panic("recordRepoMock.GetByIDFunc: method is nil but recordRepo.GetByID was just called")
	}
	mock.lock.Lock()
	mock.calls.GetByID = append(mock.calls.GetByID, struct {
		Ctx context.Context
		ID  string
	}{Ctx: ctx, ID: id})
	mock.lock.Unlock()
	return mock.GetByIDFunc(ctx, id)
}

func (mock *recordRepoMock) Snapshot(ctx context.Context) []domain.ServiceRecord {
	if mock.SnapshotFunc == nil {
		panic("recordRepoMock.SnapshotFunc: method is nil but recordRepo.Snapshot was just called")
	}
	mock.lock.Lock()
	mock.calls.Snapshot = append(mock.calls.Snapshot, struct {
		Ctx context.Context
	}{Ctx: ctx})
	mock.lock.Unlock()
	return mock.SnapshotFunc(ctx)
}

func (mock *recordRepoMock) Create(ctx context.Context, attrs domain.Attributes) (domain.ServiceRecord, error) {
	if mock.CreateFunc == nil {
		panic("recordRepoMock.CreateFunc: method is nil but recordRepo.Create was just called")
	}
	mock.lock.Lock()
	mock.calls.Create = append(mock.calls.Create, struct {
		Ctx   context.Context
		Attrs domain.Attributes
	}{Ctx: ctx, Attrs: attrs})
	mock.lock.Unlock()
	return mock.CreateFunc(ctx, attrs)
}

func (mock *recordRepoMock) Update(ctx context.Context, id string, fn func(domain.ServiceRecord) (domain.ServiceRecord, error)) (domain.ServiceRecord, error) {
	if mock.UpdateFunc == nil {
		panic("recordRepoMock.UpdateFunc: method is nil but recordRepo.Update was just called")
	}
	mock.lock.Lock()
	mock.calls.Update = append(mock.calls.Update, struct {
		Ctx context.Context
		ID  string
	}{Ctx: ctx, ID: id})
	mock.lock.Unlock()
	return mock.UpdateFunc(ctx, id, fn)
}

func (mock *recordRepoMock) Delete(ctx context.Context, id string) error {
	if mock.DeleteFunc == nil {
		panic("recordRepoMock.DeleteFunc: method is nil but recordRepo.Delete was just called")
	}
	mock.lock.Lock()
	mock.calls.Delete = append(mock.calls.Delete, struct {
		Ctx context.Context
		ID  string
	}{Ctx: ctx, ID: id})
	mock.lock.Unlock()
	return mock.DeleteFunc(ctx, id)
}

func (mock *recordRepoMock) CreateCalls() []struct {
	Ctx   context.Context
	Attrs domain.Attributes
} {
	mock.lock.RLock()
	defer mock.lock.RUnlock()
	return mock.calls.Create
}

func (mock *recordRepoMock) UpdateCalls() []struct {
	Ctx context.Context
	ID  string
} {
	mock.lock.RLock()
	defer mock.lock.RUnlock()
	return mock.calls.Update
}

var _ eventPublisher = &eventPublisherMock{}

type eventPublisherMock struct {
	mu        sync.Mutex
	published []domain.ServiceRecord
}

func (mock *eventPublisherMock) Publish(rec domain.ServiceRecord) {
	mock.mu.Lock()
	mock.published = append(mock.published, rec)
	mock.mu.Unlock()
}

func (mock *eventPublisherMock) Published() []domain.ServiceRecord {
	mock.mu.Lock()
	defer mock.mu.Unlock()
	return append([]domain.ServiceRecord(nil), mock.published...)
}
