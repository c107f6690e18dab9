package storage

import (
	"context"
	"testing"
	"time"

	"github.com/garyellow/coast-messenger-go/internal/user"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewTestDB()
	if err != nil {
		t.Fatalf("NewTestDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSaveAndGetUser(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := context.Background()

	u := user.New("psid-1")
	u.FirstName = "Jane"
	u.LastName = "Doe"
	u.Gender = "female"
	u.Locale = "en_GB"
	u.TravelInterests = []string{"Photography", "Food"}
	u.BudgetRange = "$2000-$3000"

	if err := db.SaveUser(ctx, u); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}

	got, err := db.GetUser(ctx, "psid-1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got == nil {
		t.Fatal("GetUser returned nil for saved user")
	}
	if got.FirstName != "Jane" || got.LastName != "Doe" {
		t.Errorf("name = %q %q", got.FirstName, got.LastName)
	}
	if got.Locale != "en_GB" {
		t.Errorf("Locale = %q", got.Locale)
	}
	if len(got.TravelInterests) != 2 || got.TravelInterests[0] != "Photography" {
		t.Errorf("TravelInterests = %v", got.TravelInterests)
	}
	if got.LastSeen.IsZero() {
		t.Error("LastSeen not set")
	}
}

func TestGetUser_Unknown(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)

	got, err := db.GetUser(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got != nil {
		t.Errorf("GetUser = %+v, want nil for unknown user", got)
	}
}

func TestSaveUser_Upsert(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := context.Background()

	u := user.New("psid-1")
	u.FirstName = "Jane"
	if err := db.SaveUser(ctx, u); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}

	u.FirstName = "Janet"
	u.BudgetRange = "<$1000"
	if err := db.SaveUser(ctx, u); err != nil {
		t.Fatalf("SaveUser (update): %v", err)
	}

	got, err := db.GetUser(ctx, "psid-1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.FirstName != "Janet" || got.BudgetRange != "<$1000" {
		t.Errorf("update not applied: %+v", got)
	}

	count, err := db.CountUsers(ctx)
	if err != nil {
		t.Fatalf("CountUsers: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1 (upsert, not insert)", count)
	}
}

func TestTouchUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	origNow := nowUnix
	t.Cleanup(func() { nowUnix = origNow })

	nowUnix = func() int64 { return 1000 }
	u := user.New("psid-1")
	if err := db.SaveUser(ctx, u); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}

	nowUnix = func() int64 { return 2000 }
	if err := db.TouchUser(ctx, "psid-1"); err != nil {
		t.Fatalf("TouchUser: %v", err)
	}

	got, err := db.GetUser(ctx, "psid-1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.LastSeen.Unix() != 2000 {
		t.Errorf("LastSeen = %d, want 2000", got.LastSeen.Unix())
	}
}

func TestDeleteStaleUsers(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	origNow := nowUnix
	t.Cleanup(func() { nowUnix = origNow })

	base := time.Now().Unix()

	// One old user, one fresh user.
	nowUnix = func() int64 { return base - int64((200 * time.Hour).Seconds()) }
	if err := db.SaveUser(ctx, user.New("old")); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}
	nowUnix = func() int64 { return base }
	if err := db.SaveUser(ctx, user.New("fresh")); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}

	deleted, err := db.DeleteStaleUsers(ctx, 168*time.Hour)
	if err != nil {
		t.Fatalf("DeleteStaleUsers: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	if got, _ := db.GetUser(ctx, "old"); got != nil {
		t.Error("stale user still present")
	}
	if got, _ := db.GetUser(ctx, "fresh"); got == nil {
		t.Error("fresh user was deleted")
	}
}
