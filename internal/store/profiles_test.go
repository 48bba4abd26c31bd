package store

import (
	"context"
	"testing"

	"github.com/erazemk/izposoja/internal/db"
	"github.com/erazemk/izposoja/internal/model"
)

func TestProfileStats(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner := seedUser(t, database, "owner", model.RoleOwner)
	tenant := seedUser(t, database, "tenant", model.RoleTenant)
	item := seedItem(t, database, owner.ID, "Grill", model.ItemStatusPublic)
	gone := seedItem(t, database, owner.ID, "Old grill", model.ItemStatusPublic)
	DeleteItem(ctx, database, gone.ID)

	l1 := seedLoan(t, database, item.ID, tenant.ID)
	l2 := seedLoan(t, database, item.ID, tenant.ID)
	CreateReview(ctx, database, l1.ID, tenant.ID, "", 4)
	CreateReview(ctx, database, l2.ID, tenant.ID, "", 2)
	// The owner's own review doesn't count towards the owner.
	CreateReview(ctx, database, l1.ID, owner.ID, "", 5)

	p, err := GetProfile(ctx, database, owner.ID)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	want := model.ProfileStats{ItemsOwned: 1, LoansAsOwner: 2, Reviews: 2, AverageRating: 3}
	if p.Stats != want {
		t.Errorf("expected stats %+v, got %+v", want, p.Stats)
	}

	p, _ = GetProfile(ctx, database, tenant.ID)
	want = model.ProfileStats{LoansAsTenant: 2, Reviews: 1, AverageRating: 5}
	if p.Stats != want {
		t.Errorf("expected stats %+v, got %+v", want, p.Stats)
	}
}

func TestUpdateProfile(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	u := seedUser(t, database, "jana", model.RoleUser)

	p, _ := GetProfile(ctx, database, u.ID)
	if p.DisplayName != "jana" {
		t.Errorf("expected display name to default to username, got %q", p.DisplayName)
	}

	UpdateProfile(ctx, database, u.ID, "Jana N.", "Lends bikes")
	p, _ = GetProfile(ctx, database, u.ID)
	if p.DisplayName != "Jana N." || p.Bio != "Lends bikes" {
		t.Errorf("expected updated profile, got %+v", p)
	}

	DeleteUser(ctx, database, u.ID)
	if p, _ := GetProfile(ctx, database, u.ID); p != nil {
		t.Error("expected no profile for a deleted user")
	}
}

func TestSetProfileImageReplaces(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	u := seedUser(t, database, "pic", model.RoleUser)

	first, err := SetProfileImage(ctx, database, u.ID, []byte("one"), "image/jpeg")
	if err != nil {
		t.Fatalf("SetProfileImage: %v", err)
	}
	second, err := SetProfileImage(ctx, database, u.ID, []byte("two"), "image/jpeg")
	if err != nil {
		t.Fatalf("SetProfileImage: %v", err)
	}

	p, _ := GetProfile(ctx, database, u.ID)
	if p.ImageID == nil || *p.ImageID != second.ID {
		t.Errorf("expected profile image %d, got %v", second.ID, p.ImageID)
	}
	if got, _ := GetImage(ctx, database, first.ID); got != nil {
		t.Error("expected previous profile image to be deleted")
	}
}
