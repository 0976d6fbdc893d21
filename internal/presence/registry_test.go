package presence

import (
	"testing"

	"github.com/Danielopol/Metrosocial/internal/identity"
)

func TestMarkOnlineOffline(t *testing.T) {
	reg := NewRegistry()

	if reg.IsOnline("user-1") {
		t.Fatalf("expected user offline initially")
	}

	rec := reg.MarkOnline(identity.Principal{ID: "user-1", Username: "alice"})
	if rec.LastSeen.IsZero() {
		t.Fatalf("expected last seen timestamp")
	}
	if !reg.IsOnline("user-1") {
		t.Fatalf("expected user online")
	}

	// idempotent upsert
	reg.MarkOnline(identity.Principal{ID: "user-1", Username: "alice"})
	if len(reg.Online()) != 1 {
		t.Fatalf("expected one record after repeated mark online")
	}

	reg.MarkOffline("user-1")
	if reg.IsOnline("user-1") {
		t.Fatalf("expected user offline")
	}

	// idempotent removal
	reg.MarkOffline("user-1")
	if len(reg.Online()) != 0 {
		t.Fatalf("expected empty registry")
	}
}

func TestOnlineSnapshotSorted(t *testing.T) {
	reg := NewRegistry()
	reg.MarkOnline(identity.Principal{ID: "user-b", Username: "bob"})
	reg.MarkOnline(identity.Principal{ID: "user-a", Username: "alice"})

	users := reg.Online()
	if len(users) != 2 {
		t.Fatalf("expected two users")
	}
	if users[0].UserID != "user-a" || users[1].UserID != "user-b" {
		t.Fatalf("expected snapshot sorted by user id")
	}
}
