package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/meeting-planner/internal/persistence"
	"github.com/example/meeting-planner/internal/testfixtures"
)

func createTestParticipant(t *testing.T, repo *ParticipantRepository, id, planID string, employeeID, partnerID *string) {
	t.Helper()
	err := repo.AddParticipant(context.Background(), persistence.Participant{
		ID:               id,
		PlanificationID:  planID,
		EmployeeID:       employeeID,
		PartnerID:        partnerID,
		Name:             "Alice Durand",
		Email:            "alice@example.com",
		InvitationStatus: "pending",
	})
	if err != nil {
		t.Fatalf("AddParticipant failed: %v", err)
	}
}

func TestParticipantRepository_IdentityUniquePerPlanification(t *testing.T) {
	pool := setupTestPool(t)
	planRepo := NewPlanificationRepository(pool)
	repo := NewParticipantRepository(pool)
	ctx := context.Background()

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	createTestPlanification(t, planRepo, "plan-1", "draft", nil, start)
	createTestPlanification(t, planRepo, "plan-2", "draft", nil, start)

	employeeID := "emp-1"
	createTestParticipant(t, repo, "part-1", "plan-1", &employeeID, nil)

	// Same employee on the same planification is a duplicate.
	err := repo.AddParticipant(ctx, persistence.Participant{
		ID:               "part-2",
		PlanificationID:  "plan-1",
		EmployeeID:       &employeeID,
		Name:             "Alice Durand",
		InvitationStatus: "pending",
	})
	if !errors.Is(err, persistence.ErrDuplicate) {
		t.Errorf("Expected ErrDuplicate, got %v", err)
	}

	// Same employee on another planification is fine.
	createTestParticipant(t, repo, "part-3", "plan-2", &employeeID, nil)
}

func TestParticipantRepository_RejectsAmbiguousIdentity(t *testing.T) {
	pool := setupTestPool(t)
	planRepo := NewPlanificationRepository(pool)
	repo := NewParticipantRepository(pool)
	ctx := context.Background()

	createTestPlanification(t, planRepo, "plan-1", "draft", nil, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))

	employeeID, partnerID := "emp-1", "partner-1"
	err := repo.AddParticipant(ctx, persistence.Participant{
		ID:               "part-1",
		PlanificationID:  "plan-1",
		EmployeeID:       &employeeID,
		PartnerID:        &partnerID,
		Name:             "Alice Durand",
		InvitationStatus: "pending",
	})
	if !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Errorf("Expected ErrConstraintViolation, got %v", err)
	}
}

func TestParticipantRepository_RoleNameJoin(t *testing.T) {
	pool := setupTestPool(t)
	planRepo := NewPlanificationRepository(pool)
	repo := NewParticipantRepository(pool)
	ctx := context.Background()

	createTestPlanification(t, planRepo, "plan-1", "draft", nil, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))

	employeeID := "emp-1"
	roleID := "role-host" // seeded by Migrate
	err := repo.AddParticipant(ctx, persistence.Participant{
		ID:               "part-1",
		PlanificationID:  "plan-1",
		EmployeeID:       &employeeID,
		Name:             "Alice Durand",
		RoleID:           &roleID,
		InvitationStatus: "pending",
	})
	if err != nil {
		t.Fatalf("AddParticipant failed: %v", err)
	}

	p, err := repo.GetParticipant(ctx, "part-1")
	if err != nil {
		t.Fatalf("GetParticipant failed: %v", err)
	}
	if p.RoleName != "host" {
		t.Errorf("Expected role name 'host', got '%s'", p.RoleName)
	}
}

func TestParticipantRepository_SetAccessTokenIfEmpty(t *testing.T) {
	pool := setupTestPool(t)
	planRepo := NewPlanificationRepository(pool)
	repo := NewParticipantRepository(pool)
	ctx := context.Background()

	createTestPlanification(t, planRepo, "plan-1", "draft", nil, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	employeeID := "emp-1"
	createTestParticipant(t, repo, "part-1", "plan-1", &employeeID, nil)

	stored, err := repo.SetAccessTokenIfEmpty(ctx, "part-1", "token-a")
	if err != nil {
		t.Fatalf("SetAccessTokenIfEmpty failed: %v", err)
	}
	if stored != "token-a" {
		t.Errorf("Expected 'token-a', got '%s'", stored)
	}

	// A second write does not replace the stored token.
	stored, err = repo.SetAccessTokenIfEmpty(ctx, "part-1", "token-b")
	if err != nil {
		t.Fatalf("SetAccessTokenIfEmpty failed: %v", err)
	}
	if stored != "token-a" {
		t.Errorf("Expected stored token 'token-a' to survive, got '%s'", stored)
	}
}

func TestParticipantRepository_UpdateInvitationStatus(t *testing.T) {
	pool := setupTestPool(t)
	planRepo := NewPlanificationRepository(pool)
	repo := NewParticipantRepository(pool)
	ctx := context.Background()

	createTestPlanification(t, planRepo, "plan-1", "draft", nil, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	employeeID := "emp-1"
	createTestParticipant(t, repo, "part-1", "plan-1", &employeeID, nil)

	if err := repo.UpdateInvitationStatus(ctx, "part-1", "pending", "accepted"); err != nil {
		t.Fatalf("UpdateInvitationStatus failed: %v", err)
	}

	err := repo.UpdateInvitationStatus(ctx, "part-1", "pending", "declined")
	if !errors.Is(err, persistence.ErrStale) {
		t.Errorf("Expected ErrStale on second response, got %v", err)
	}

	p, err := repo.GetParticipant(ctx, "part-1")
	if err != nil {
		t.Fatalf("GetParticipant failed: %v", err)
	}
	if p.InvitationStatus != "accepted" {
		t.Errorf("Expected status 'accepted', got '%s'", p.InvitationStatus)
	}
}

func TestParticipantRepository_PartnerRoundTrip(t *testing.T) {
	pool := setupTestPool(t)
	planRepo := NewPlanificationRepository(pool)
	repo := NewParticipantRepository(pool)
	ctx := context.Background()

	createTestPlanification(t, planRepo, "plan-1", "draft", nil, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))

	fixture := testfixtures.NewParticipantFixture(
		testfixtures.WithParticipantID("part-1"),
		testfixtures.WithParticipantPlanification("plan-1"),
		testfixtures.WithParticipantPartner("partner-1"),
		testfixtures.WithParticipantToken("token-a"),
	)
	if err := repo.AddParticipant(ctx, fixture.Persistence()); err != nil {
		t.Fatalf("AddParticipant failed: %v", err)
	}

	p, err := repo.GetParticipant(ctx, "part-1")
	if err != nil {
		t.Fatalf("GetParticipant failed: %v", err)
	}
	if p.PartnerID == nil || *p.PartnerID != "partner-1" {
		t.Errorf("Expected partner identity, got %+v", p)
	}
	if p.EmployeeID != nil || p.UserID != nil {
		t.Errorf("Partner participant must carry no employee or user binding: %+v", p)
	}
	if p.AccessToken != "token-a" {
		t.Errorf("Expected stored token 'token-a', got '%s'", p.AccessToken)
	}
}

func TestParticipantRepository_LinkMeeting(t *testing.T) {
	pool := setupTestPool(t)
	planRepo := NewPlanificationRepository(pool)
	repo := NewParticipantRepository(pool)
	ctx := context.Background()

	createTestPlanification(t, planRepo, "plan-1", "started", nil, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	empOne, empTwo := "emp-1", "emp-2"
	createTestParticipant(t, repo, "part-1", "plan-1", &empOne, nil)
	createTestParticipant(t, repo, "part-2", "plan-1", &empTwo, nil)

	if err := repo.LinkMeeting(ctx, "plan-1", "meet-1"); err != nil {
		t.Fatalf("LinkMeeting failed: %v", err)
	}

	participants, err := repo.ListParticipants(ctx, "plan-1")
	if err != nil {
		t.Fatalf("ListParticipants failed: %v", err)
	}
	for _, p := range participants {
		if p.MeetingID == nil || *p.MeetingID != "meet-1" {
			t.Errorf("Expected participant %s linked to meet-1, got %v", p.ID, p.MeetingID)
		}
	}
}
