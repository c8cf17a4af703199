package service

import (
	"context"
	"sync"

	"github.com/campusmarket/campusmarket-backend/internal/domain"
	"github.com/campusmarket/campusmarket-backend/internal/notify"
	"github.com/campusmarket/campusmarket-backend/internal/repository"
	"github.com/stretchr/testify/mock"
)

// MockThreadRepository is a mock implementation of ThreadRepository
type MockThreadRepository struct {
	mock.Mock
}

func (m *MockThreadRepository) Create(thread *domain.Thread) error {
	args := m.Called(thread)
	return args.Error(0)
}

func (m *MockThreadRepository) FindByID(id string) (*domain.Thread, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Thread), args.Error(1)
}

func (m *MockThreadRepository) FindByListingAndBuyer(listingID, buyerID string) (*domain.Thread, error) {
	args := m.Called(listingID, buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Thread), args.Error(1)
}

func (m *MockThreadRepository) ListByUser(userID string) ([]*domain.Thread, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Thread), args.Error(1)
}

// MockListingRepository is a mock implementation of ListingRepository
type MockListingRepository struct {
	mock.Mock
}

func (m *MockListingRepository) Create(listing *domain.Listing) error {
	args := m.Called(listing)
	return args.Error(0)
}

func (m *MockListingRepository) FindByID(id string) (*domain.Listing, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *MockListingRepository) List(params *repository.ListingListParams) ([]*domain.Listing, error) {
	args := m.Called(params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Listing), args.Error(1)
}

func (m *MockListingRepository) ListByOwner(ownerID string) ([]*domain.Listing, error) {
	args := m.Called(ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Listing), args.Error(1)
}

func (m *MockListingRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockListingRepository) ListReported() ([]*domain.Listing, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Listing), args.Error(1)
}

// MockMessageRepository is a mock implementation of MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) CreateInThread(msg *domain.Message) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockMessageRepository) FindByID(id uint64) (*domain.Message, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *MockMessageRepository) ListByThread(threadID string) ([]*domain.Message, error) {
	args := m.Called(threadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Message), args.Error(1)
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *domain.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(id string) (*domain.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(email string) (*domain.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) TouchLastLogin(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockUserRepository) ListAll() ([]*domain.User, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

// MockReportRepository is a mock implementation of ReportRepository
type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) Create(report *domain.Report) error {
	args := m.Called(report)
	return args.Error(0)
}

func (m *MockReportRepository) ListByListing(listingID string) ([]*domain.Report, error) {
	args := m.Called(listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Report), args.Error(1)
}

// capturePublisher records fan-out payloads and signals on each publish
type capturePublisher struct {
	mu       sync.Mutex
	payloads [][]byte
	threads  []string
	done     chan struct{}
}

func newCapturePublisher() *capturePublisher {
	return &capturePublisher{done: make(chan struct{}, 8)}
}

func (p *capturePublisher) Publish(threadID string, payload []byte) {
	p.mu.Lock()
	p.threads = append(p.threads, threadID)
	p.payloads = append(p.payloads, payload)
	p.mu.Unlock()
	p.done <- struct{}{}
}

func (p *capturePublisher) published() ([]string, [][]byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.threads...), append([][]byte(nil), p.payloads...)
}

// captureDispatcher records queued jobs and signals on each dispatch
type captureDispatcher struct {
	mu   sync.Mutex
	jobs []*notify.Job
	err  error
	done chan struct{}
}

func newCaptureDispatcher() *captureDispatcher {
	return &captureDispatcher{done: make(chan struct{}, 8)}
}

func (d *captureDispatcher) Dispatch(_ context.Context, job *notify.Job) error {
	d.mu.Lock()
	d.jobs = append(d.jobs, job)
	d.mu.Unlock()
	d.done <- struct{}{}
	return d.err
}

func (d *captureDispatcher) Close() error { return nil }

func (d *captureDispatcher) dispatched() []*notify.Job {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*notify.Job(nil), d.jobs...)
}
