package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ActionStore is the action persistence surface used by ActionService.
type ActionStore interface {
	CreateAction(ctx context.Context, action Action) (Action, error)
	UpdateAction(ctx context.Context, action Action) (Action, error)
	GetAction(ctx context.Context, id string) (Action, error)
	ListActions(ctx context.Context, query ActionQuery) ([]Action, error)
	DeleteAction(ctx context.Context, id string) error
}

// ActionQuery narrows action listings.
type ActionQuery struct {
	MeetingID  *string
	SessionID  *string
	ParentID   *string
	AssigneeID *string
}

// SessionLookup resolves a session to recover its meeting when actions are
// created from within a live session.
type SessionLookup interface {
	GetSession(ctx context.Context, id string) (Session, error)
}

// maxActionDepth bounds the ancestor walk when validating parent links, so
// a corrupted chain cannot loop forever.
const maxActionDepth = 32

// ActionService manages action items: creation from meetings or live
// sessions, the status workflow, and the parent/sub-action relationship with
// single-level auto-completion.
type ActionService struct {
	actions     ActionStore
	sessions    SessionLookup
	notifier    Notifier
	audit       AuditLog
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewActionService wires dependencies for the action tracker.
func NewActionService(actions ActionStore, sessions SessionLookup, notifier Notifier, audit AuditLog, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ActionService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ActionService{
		actions:     actions,
		sessions:    sessions,
		notifier:    notifier,
		audit:       audit,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *ActionService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ActionService", operation, attrs...)
}

// CreateAction validates and stores an action item. An action created from a
// session is automatically linked to that session's meeting.
func (s *ActionService) CreateAction(ctx context.Context, principal Principal, input ActionInput) (action Action, err error) {
	logger := s.loggerWith(ctx, "CreateAction", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create action", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("action_id", action.ID).InfoContext(ctx, "action created")
	}()

	vErr := &ValidationError{}
	if strings.TrimSpace(input.Title) == "" {
		vErr.add("title", "title is required")
	}
	priority := input.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	switch priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
	default:
		vErr.add("priority", fmt.Sprintf("unknown priority %q", priority))
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	meetingID := input.MeetingID
	if input.SessionID != nil && meetingID == nil {
		var session Session
		session, err = s.sessions.GetSession(ctx, *input.SessionID)
		if err != nil {
			err = mapRepoError(err)
			return
		}
		meetingID = &session.MeetingID
	}

	if input.ParentID != nil {
		if err = s.validateParent(ctx, "", *input.ParentID); err != nil {
			return
		}
	}

	now := s.now()
	action = Action{
		ID:          s.idGenerator(),
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		AssigneeID:  input.AssigneeID,
		MeetingID:   meetingID,
		SessionID:   input.SessionID,
		ParentID:    input.ParentID,
		Priority:    priority,
		Status:      ActionTodo,
		DueDate:     input.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	action, err = s.actions.CreateAction(ctx, action)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	if s.notifier != nil && action.AssigneeID != nil {
		if nErr := s.notifier.Notify(ctx, *action.AssigneeID, "New action assigned", fmt.Sprintf("You have been assigned the action %q.", action.Title)); nErr != nil {
			logger.WarnContext(ctx, "assignment notification failed", "error", nErr)
		}
	}
	return
}

// GetAction returns a single action.
func (s *ActionService) GetAction(ctx context.Context, id string) (Action, error) {
	action, err := s.actions.GetAction(ctx, id)
	if err != nil {
		return Action{}, mapRepoError(err)
	}
	return action, nil
}

// ListActions enumerates actions matching the query.
func (s *ActionService) ListActions(ctx context.Context, query ActionQuery) ([]Action, error) {
	actions, err := s.actions.ListActions(ctx, query)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return actions, nil
}

// ListActionsByMeeting implements MeetingActions for summary assembly.
func (s *ActionService) ListActionsByMeeting(ctx context.Context, meetingID string) ([]Action, error) {
	return s.ListActions(ctx, ActionQuery{MeetingID: &meetingID})
}

// UpdateAction edits the descriptive fields of an action. Status moves
// through UpdateStatus; parent links move through Reparent.
func (s *ActionService) UpdateAction(ctx context.Context, principal Principal, id string, input ActionInput) (action Action, err error) {
	logger := s.loggerWith(ctx, "UpdateAction", "principal_id", principal.UserID, "action_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update action", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	action, err = s.actions.GetAction(ctx, id)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	vErr := &ValidationError{}
	if strings.TrimSpace(input.Title) == "" {
		vErr.add("title", "title is required")
	}
	if input.Priority != "" {
		switch input.Priority {
		case PriorityLow, PriorityMedium, PriorityHigh:
		default:
			vErr.add("priority", fmt.Sprintf("unknown priority %q", input.Priority))
		}
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	action.Title = strings.TrimSpace(input.Title)
	action.Description = input.Description
	action.AssigneeID = input.AssigneeID
	if input.Priority != "" {
		action.Priority = input.Priority
	}
	action.DueDate = input.DueDate
	action.UpdatedAt = s.now()

	action, err = s.actions.UpdateAction(ctx, action)
	if err != nil {
		err = mapRepoError(err)
	}
	return
}

// UpdateStatus moves an action through its workflow. Completing the last
// open sub-action of a parent completes the parent too, one level up only.
// Blocking an action notifies the assignee.
func (s *ActionService) UpdateStatus(ctx context.Context, principal Principal, id string, status ActionStatus) (action Action, err error) {
	logger := s.loggerWith(ctx, "UpdateStatus", "principal_id", principal.UserID, "action_id", id, "status", string(status))
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update action status", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	switch status {
	case ActionTodo, ActionInProgress, ActionDone, ActionBlocked:
	default:
		vErr := &ValidationError{}
		vErr.add("status", fmt.Sprintf("unknown status %q", status))
		err = vErr
		return
	}

	action, err = s.actions.GetAction(ctx, id)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if action.Status == status {
		return
	}

	now := s.now()
	action.Status = status
	action.UpdatedAt = now
	switch status {
	case ActionDone:
		completed := now
		action.CompletedAt = &completed
	default:
		action.CompletedAt = nil
	}

	action, err = s.actions.UpdateAction(ctx, action)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	switch status {
	case ActionDone:
		if action.ParentID != nil {
			s.completeParentIfDone(ctx, principal, *action.ParentID, logger)
		}
	case ActionBlocked:
		if s.notifier != nil && action.AssigneeID != nil {
			if nErr := s.notifier.Notify(ctx, *action.AssigneeID, "Action blocked", fmt.Sprintf("The action %q has been marked as blocked.", action.Title)); nErr != nil {
				logger.WarnContext(ctx, "blocked notification failed", "error", nErr)
			}
		}
		s.recordAudit(ctx, principal, "action.blocked", action.ID, action.Title)
	}
	return
}

// Reparent moves an action under a new parent, or to the top level when
// parentID is nil. The parent chain is walked upward to reject cycles.
func (s *ActionService) Reparent(ctx context.Context, principal Principal, id string, parentID *string) (action Action, err error) {
	logger := s.loggerWith(ctx, "Reparent", "principal_id", principal.UserID, "action_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to reparent action", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	action, err = s.actions.GetAction(ctx, id)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	if parentID != nil {
		if err = s.validateParent(ctx, id, *parentID); err != nil {
			return
		}
	}

	action.ParentID = parentID
	action.UpdatedAt = s.now()
	action, err = s.actions.UpdateAction(ctx, action)
	if err != nil {
		err = mapRepoError(err)
	}
	return
}

// DeleteAction removes an action. Actions with open sub-actions cannot be
// deleted.
func (s *ActionService) DeleteAction(ctx context.Context, principal Principal, id string) (err error) {
	logger := s.loggerWith(ctx, "DeleteAction", "principal_id", principal.UserID, "action_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete action", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	var children []Action
	children, err = s.actions.ListActions(ctx, ActionQuery{ParentID: &id})
	if err != nil {
		err = mapRepoError(err)
		return
	}
	for _, child := range children {
		if child.Status != ActionDone {
			err = &PreconditionError{Reason: fmt.Sprintf("action has open sub-action %q", child.Title)}
			return
		}
	}
	err = mapRepoError(s.actions.DeleteAction(ctx, id))
	return
}

// completeParentIfDone marks the parent done when all its sub-actions are
// done. Deliberately not recursive: a grandparent completes only when its
// own children are all explicitly done.
func (s *ActionService) completeParentIfDone(ctx context.Context, principal Principal, parentID string, logger *slog.Logger) {
	parent, err := s.actions.GetAction(ctx, parentID)
	if err != nil {
		logger.WarnContext(ctx, "failed to load parent action", "parent_id", parentID, "error", err)
		return
	}
	if parent.Status == ActionDone {
		return
	}

	children, err := s.actions.ListActions(ctx, ActionQuery{ParentID: &parentID})
	if err != nil {
		logger.WarnContext(ctx, "failed to list sub-actions", "parent_id", parentID, "error", err)
		return
	}
	for _, child := range children {
		if child.Status != ActionDone {
			return
		}
	}

	now := s.now()
	parent.Status = ActionDone
	parent.CompletedAt = &now
	parent.UpdatedAt = now
	if _, err := s.actions.UpdateAction(ctx, parent); err != nil {
		logger.WarnContext(ctx, "failed to auto-complete parent action", "parent_id", parentID, "error", err)
		return
	}

	if s.notifier != nil && parent.AssigneeID != nil {
		if nErr := s.notifier.Notify(ctx, *parent.AssigneeID, "Action completed", fmt.Sprintf("All sub-actions of %q are done; it has been completed automatically.", parent.Title)); nErr != nil {
			logger.WarnContext(ctx, "auto-completion notification failed", "error", nErr)
		}
	}
	s.recordAudit(ctx, principal, "action.auto_completed", parent.ID, parent.Title)
}

// validateParent rejects self-parenting and cycles by walking the ancestor
// chain of the candidate parent.
func (s *ActionService) validateParent(ctx context.Context, actionID, parentID string) error {
	if parentID == actionID && actionID != "" {
		vErr := &ValidationError{}
		vErr.add("parent", "an action cannot be its own parent")
		return vErr
	}

	current := parentID
	for depth := 0; depth < maxActionDepth; depth++ {
		ancestor, err := s.actions.GetAction(ctx, current)
		if err != nil {
			return mapRepoError(err)
		}
		if ancestor.ParentID == nil {
			return nil
		}
		if actionID != "" && *ancestor.ParentID == actionID {
			vErr := &ValidationError{}
			vErr.add("parent", "this parent would create a cycle")
			return vErr
		}
		current = *ancestor.ParentID
	}
	vErr := &ValidationError{}
	vErr.add("parent", "the parent chain is too deep")
	return vErr
}

func (s *ActionService) recordAudit(ctx context.Context, principal Principal, event, actionID, message string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, AuditEntry{
		EntityKind: "action",
		EntityID:   actionID,
		Event:      event,
		ActorID:    principal.UserID,
		Message:    message,
	})
}
