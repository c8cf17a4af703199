package repository

import (
	"testing"
	"time"

	"github.com/campusmarket/campusmarket-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupMessageTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.Listing{}, &domain.Thread{}, &domain.Message{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}

// seedThread inserts a buyer, seller, listing and thread, then rewinds the
// thread's updated_at an hour so a bump is observable.
func seedThread(t *testing.T, db *gorm.DB) *domain.Thread {
	t.Helper()
	buyer := &domain.User{ID: "buyer-1", Name: "Blake", Email: "blake@bc.edu"}
	seller := &domain.User{ID: "seller-1", Name: "Sam", Email: "sam@bc.edu"}
	listing := &domain.Listing{
		ID:       "listing-1",
		Title:    "Calc III textbook",
		Price:    40,
		Category: domain.CategoryTextbooks,
		OwnerID:  seller.ID,
	}
	thread := &domain.Thread{
		ID:        "thread-1",
		ListingID: listing.ID,
		BuyerID:   buyer.ID,
		SellerID:  seller.ID,
	}
	for _, row := range []any{buyer, seller, listing, thread} {
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("failed to seed test db: %v", err)
		}
	}

	stale := time.Now().UTC().Add(-time.Hour)
	if err := db.Model(thread).Update("updated_at", stale).Error; err != nil {
		t.Fatalf("failed to rewind updated_at: %v", err)
	}
	thread.UpdatedAt = stale
	return thread
}

func reloadThread(t *testing.T, db *gorm.DB, id string) *domain.Thread {
	t.Helper()
	var thread domain.Thread
	if err := db.Where("id = ?", id).First(&thread).Error; err != nil {
		t.Fatalf("failed to reload thread: %v", err)
	}
	return &thread
}

func TestCreateInThread_BumpsThreadTimestamp(t *testing.T) {
	db := setupMessageTestDB(t)
	thread := seedThread(t, db)
	repo := NewMessageRepository(db)

	msg := &domain.Message{ThreadID: thread.ID, SenderID: thread.BuyerID, Body: "is this available?"}
	assert.NoError(t, repo.CreateInThread(msg))
	assert.NotZero(t, msg.ID, "append assigns an auto-increment ID")

	bumped := reloadThread(t, db, thread.ID)
	assert.True(t, bumped.UpdatedAt.After(thread.UpdatedAt),
		"updated_at must move forward with the append")
	assert.False(t, bumped.UpdatedAt.Before(msg.CreatedAt),
		"updated_at must not precede the message it reflects")

	// A second append keeps updated_at monotonic
	second := &domain.Message{ThreadID: thread.ID, SenderID: thread.SellerID, Body: "yes, still here"}
	assert.NoError(t, repo.CreateInThread(second))
	again := reloadThread(t, db, thread.ID)
	assert.True(t, again.UpdatedAt.After(bumped.UpdatedAt))
}

func TestCreateInThread_RollsBackWithoutAppend(t *testing.T) {
	db := setupMessageTestDB(t)
	thread := seedThread(t, db)
	repo := NewMessageRepository(db)

	first := &domain.Message{ThreadID: thread.ID, SenderID: thread.BuyerID, Body: "hello"}
	assert.NoError(t, repo.CreateInThread(first))
	before := reloadThread(t, db, thread.ID)

	// Forcing a duplicate primary key makes the insert fail inside the
	// transaction; neither a row nor a bump may land.
	dup := &domain.Message{ID: first.ID, ThreadID: thread.ID, SenderID: thread.SellerID, Body: "dup"}
	assert.Error(t, repo.CreateInThread(dup))

	var count int64
	db.Model(&domain.Message{}).Where("thread_id = ?", thread.ID).Count(&count)
	assert.Equal(t, int64(1), count, "failed append must not leave a row")

	after := reloadThread(t, db, thread.ID)
	assert.True(t, after.UpdatedAt.Equal(before.UpdatedAt),
		"failed append must not bump updated_at")
}

func TestListByThread_OrdersByInsertion(t *testing.T) {
	db := setupMessageTestDB(t)
	thread := seedThread(t, db)
	repo := NewMessageRepository(db)

	bodies := []string{"first", "second", "third"}
	for _, body := range bodies {
		msg := &domain.Message{ThreadID: thread.ID, SenderID: thread.BuyerID, Body: body}
		assert.NoError(t, repo.CreateInThread(msg))
	}

	messages, err := repo.ListByThread(thread.ID)
	assert.NoError(t, err)
	assert.Len(t, messages, 3)
	for i, msg := range messages {
		assert.Equal(t, bodies[i], msg.Body)
		if i > 0 {
			assert.Greater(t, msg.ID, messages[i-1].ID)
		}
	}
}
