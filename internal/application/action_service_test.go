package application

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/example/meeting-planner/internal/persistence"
)

type actionStoreStub struct {
	actions map[string]Action
}

func newActionStoreStub(actions ...Action) *actionStoreStub {
	stub := &actionStoreStub{actions: make(map[string]Action)}
	for _, a := range actions {
		stub.actions[a.ID] = a
	}
	return stub
}

func (s *actionStoreStub) CreateAction(ctx context.Context, a Action) (Action, error) {
	s.actions[a.ID] = a
	return a, nil
}

func (s *actionStoreStub) UpdateAction(ctx context.Context, a Action) (Action, error) {
	if _, ok := s.actions[a.ID]; !ok {
		return Action{}, persistence.ErrNotFound
	}
	s.actions[a.ID] = a
	return a, nil
}

func (s *actionStoreStub) GetAction(ctx context.Context, id string) (Action, error) {
	a, ok := s.actions[id]
	if !ok {
		return Action{}, persistence.ErrNotFound
	}
	return a, nil
}

func (s *actionStoreStub) ListActions(ctx context.Context, query ActionQuery) ([]Action, error) {
	var out []Action
	for _, a := range s.actions {
		if query.ParentID != nil && (a.ParentID == nil || *a.ParentID != *query.ParentID) {
			continue
		}
		if query.MeetingID != nil && (a.MeetingID == nil || *a.MeetingID != *query.MeetingID) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *actionStoreStub) DeleteAction(ctx context.Context, id string) error {
	if _, ok := s.actions[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.actions, id)
	return nil
}

type sessionLookupStub struct {
	sessions map[string]Session
}

func (s *sessionLookupStub) GetSession(ctx context.Context, id string) (Session, error) {
	session, ok := s.sessions[id]
	if !ok {
		return Session{}, persistence.ErrNotFound
	}
	return session, nil
}

func newActionService(store *actionStoreStub, notifier *notifierRecorder, audit *auditRecorder) *ActionService {
	sessions := &sessionLookupStub{sessions: map[string]Session{
		"session-1": {ID: "session-1", MeetingID: "meeting-1", UserID: "user-1"},
	}}
	counter := 0
	idGen := func() string {
		counter++
		return fmt.Sprintf("action-gen-%d", counter)
	}
	return NewActionService(store, sessions, notifier, audit, idGen, fixedNow, nil)
}

func TestActionService_CreateAction_LinksSessionMeeting(t *testing.T) {
	t.Parallel()

	store := newActionStoreStub()
	svc := newActionService(store, &notifierRecorder{}, &auditRecorder{})

	sessionID := "session-1"
	action, err := svc.CreateAction(context.Background(), Principal{UserID: "user-1"}, ActionInput{
		Title:     "Write follow-up",
		SessionID: &sessionID,
	})
	if err != nil {
		t.Fatalf("CreateAction returned %v", err)
	}
	if action.MeetingID == nil || *action.MeetingID != "meeting-1" {
		t.Fatalf("action not linked to the session's meeting: %+v", action)
	}
	if action.Status != ActionTodo || action.Priority != PriorityMedium {
		t.Fatalf("unexpected defaults: %+v", action)
	}
}

func TestActionService_CreateAction_Validates(t *testing.T) {
	t.Parallel()

	svc := newActionService(newActionStoreStub(), &notifierRecorder{}, &auditRecorder{})

	_, err := svc.CreateAction(context.Background(), Principal{UserID: "user-1"}, ActionInput{Priority: "urgent"})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"title", "priority"} {
		if _, ok := vErr.FieldErrors[field]; !ok {
			t.Errorf("expected %s validation error, got %v", field, vErr.FieldErrors)
		}
	}
}

func TestActionService_CreateAction_NotifiesAssignee(t *testing.T) {
	t.Parallel()

	notifier := &notifierRecorder{}
	svc := newActionService(newActionStoreStub(), notifier, &auditRecorder{})

	assignee := "user-2"
	_, err := svc.CreateAction(context.Background(), Principal{UserID: "user-1"}, ActionInput{
		Title:      "Review budget",
		AssigneeID: &assignee,
	})
	if err != nil {
		t.Fatalf("CreateAction returned %v", err)
	}
	if len(notifier.subjects) != 1 {
		t.Fatalf("expected assignment notification, got %v", notifier.subjects)
	}
}

func TestActionService_UpdateStatus_StampsCompletedAt(t *testing.T) {
	t.Parallel()

	store := newActionStoreStub(Action{ID: "a1", Title: "Task", Status: ActionInProgress})
	svc := newActionService(store, &notifierRecorder{}, &auditRecorder{})

	action, err := svc.UpdateStatus(context.Background(), Principal{UserID: "user-1"}, "a1", ActionDone)
	if err != nil {
		t.Fatalf("UpdateStatus returned %v", err)
	}
	if action.CompletedAt == nil || !action.CompletedAt.Equal(fixedNow()) {
		t.Fatalf("completed at not stamped: %+v", action)
	}

	// Reopening clears the completion stamp.
	action, err = svc.UpdateStatus(context.Background(), Principal{UserID: "user-1"}, "a1", ActionTodo)
	if err != nil {
		t.Fatalf("UpdateStatus returned %v", err)
	}
	if action.CompletedAt != nil {
		t.Fatalf("completed at should be cleared on reopen: %+v", action)
	}
}

func TestActionService_UpdateStatus_AutoCompletesParentOneLevel(t *testing.T) {
	t.Parallel()

	grandID := "grand"
	parentID := "parent"
	assignee := "user-owner"
	store := newActionStoreStub(
		Action{ID: grandID, Title: "Grandparent", Status: ActionTodo},
		Action{ID: parentID, Title: "Parent", Status: ActionInProgress, ParentID: &grandID, AssigneeID: &assignee},
		Action{ID: "childA", Title: "Child A", Status: ActionDone, ParentID: &parentID},
		Action{ID: "childB", Title: "Child B", Status: ActionInProgress, ParentID: &parentID},
	)
	notifier := &notifierRecorder{}
	audit := &auditRecorder{}
	svc := newActionService(store, notifier, audit)

	if _, err := svc.UpdateStatus(context.Background(), Principal{UserID: "user-1"}, "childB", ActionDone); err != nil {
		t.Fatalf("UpdateStatus returned %v", err)
	}

	parent := store.actions[parentID]
	if parent.Status != ActionDone || parent.CompletedAt == nil {
		t.Fatalf("parent should auto-complete when its last child completes: %+v", parent)
	}

	// Auto-completion never cascades past the direct parent.
	grand := store.actions[grandID]
	if grand.Status != ActionTodo {
		t.Fatalf("grandparent must not cascade: %+v", grand)
	}

	if len(notifier.subjects) != 1 {
		t.Fatalf("expected auto-completion notification, got %v", notifier.subjects)
	}
	if len(audit.entries) != 1 || audit.entries[0].Event != "action.auto_completed" {
		t.Fatalf("expected auto_completed audit entry, got %+v", audit.entries)
	}
}

func TestActionService_UpdateStatus_ParentStaysOpenWithOpenSiblings(t *testing.T) {
	t.Parallel()

	parentID := "parent"
	store := newActionStoreStub(
		Action{ID: parentID, Title: "Parent", Status: ActionInProgress},
		Action{ID: "childA", Title: "Child A", Status: ActionInProgress, ParentID: &parentID},
		Action{ID: "childB", Title: "Child B", Status: ActionBlocked, ParentID: &parentID},
	)
	svc := newActionService(store, &notifierRecorder{}, &auditRecorder{})

	if _, err := svc.UpdateStatus(context.Background(), Principal{UserID: "user-1"}, "childA", ActionDone); err != nil {
		t.Fatalf("UpdateStatus returned %v", err)
	}
	if store.actions[parentID].Status != ActionInProgress {
		t.Fatalf("parent completed despite an open sibling: %+v", store.actions[parentID])
	}
}

func TestActionService_UpdateStatus_BlockedNotifiesAndAudits(t *testing.T) {
	t.Parallel()

	assignee := "user-owner"
	store := newActionStoreStub(Action{ID: "a1", Title: "Task", Status: ActionInProgress, AssigneeID: &assignee})
	notifier := &notifierRecorder{}
	audit := &auditRecorder{}
	svc := newActionService(store, notifier, audit)

	if _, err := svc.UpdateStatus(context.Background(), Principal{UserID: "user-1"}, "a1", ActionBlocked); err != nil {
		t.Fatalf("UpdateStatus returned %v", err)
	}
	if len(notifier.subjects) != 1 {
		t.Fatalf("expected blocked notification, got %v", notifier.subjects)
	}
	if len(audit.entries) != 1 || audit.entries[0].Event != "action.blocked" {
		t.Fatalf("expected blocked audit entry, got %+v", audit.entries)
	}
}

func TestActionService_Reparent_RejectsCycles(t *testing.T) {
	t.Parallel()

	aID, bID := "a", "b"
	store := newActionStoreStub(
		Action{ID: aID, Title: "A"},
		Action{ID: bID, Title: "B", ParentID: &aID},
		Action{ID: "c", Title: "C", ParentID: &bID},
	)
	svc := newActionService(store, &notifierRecorder{}, &auditRecorder{})

	cID := "c"
	_, err := svc.Reparent(context.Background(), Principal{UserID: "user-1"}, "a", &cID)

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["parent"]; !ok {
		t.Fatalf("expected parent validation error, got %v", vErr.FieldErrors)
	}
}

func TestActionService_Reparent_RejectsSelf(t *testing.T) {
	t.Parallel()

	store := newActionStoreStub(Action{ID: "a", Title: "A"})
	svc := newActionService(store, &notifierRecorder{}, &auditRecorder{})

	self := "a"
	_, err := svc.Reparent(context.Background(), Principal{UserID: "user-1"}, "a", &self)

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestActionService_Reparent_ToTopLevel(t *testing.T) {
	t.Parallel()

	parentID := "parent"
	store := newActionStoreStub(
		Action{ID: parentID, Title: "Parent"},
		Action{ID: "child", Title: "Child", ParentID: &parentID},
	)
	svc := newActionService(store, &notifierRecorder{}, &auditRecorder{})

	action, err := svc.Reparent(context.Background(), Principal{UserID: "user-1"}, "child", nil)
	if err != nil {
		t.Fatalf("Reparent returned %v", err)
	}
	if action.ParentID != nil {
		t.Fatalf("parent link not cleared: %+v", action)
	}
}

func TestActionService_DeleteAction_BlockedByOpenChildren(t *testing.T) {
	t.Parallel()

	parentID := "parent"
	store := newActionStoreStub(
		Action{ID: parentID, Title: "Parent"},
		Action{ID: "child", Title: "Child", Status: ActionTodo, ParentID: &parentID},
	)
	svc := newActionService(store, &notifierRecorder{}, &auditRecorder{})

	err := svc.DeleteAction(context.Background(), Principal{UserID: "user-1"}, parentID)

	var pErr *PreconditionError
	if !errors.As(err, &pErr) {
		t.Fatalf("expected PreconditionError, got %v", err)
	}
}
