package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/meeting-planner/internal/persistence"
)

// ParticipantDirectory is the participant persistence surface used by
// ParticipantService.
type ParticipantDirectory interface {
	CreateParticipant(ctx context.Context, participant Participant) (Participant, error)
	GetParticipant(ctx context.Context, id string) (Participant, error)
	ListParticipants(ctx context.Context, planificationID string) ([]Participant, error)
	UpdateParticipant(ctx context.Context, participant Participant) (Participant, error)
	DeleteParticipant(ctx context.Context, id string) error
	SetAccessTokenIfEmpty(ctx context.Context, participantID, token string) (string, error)
	// UpdateInvitationStatus updates the status only when the current value
	// still equals from, returning persistence.ErrStale otherwise.
	UpdateInvitationStatus(ctx context.Context, participantID string, from, to InvitationStatus) error
}

// ContactResolver resolves employee and partner identities to their contact
// records, including any linked user account.
type ContactResolver interface {
	ResolveEmployee(ctx context.Context, employeeID string) (Contact, error)
	ResolvePartner(ctx context.Context, partnerID string) (Contact, error)
}

// Contact is a resolved identity: a person's display name, email, and the
// internal user account when one exists.
type Contact struct {
	Name   string
	Email  string
	UserID *string
}

// RoleLookup resolves role references for assignment.
type RoleLookup interface {
	GetRole(ctx context.Context, id string) (Role, error)
}

// PlanificationLookup fetches the planification a participant belongs to.
type PlanificationLookup interface {
	GetPlanification(ctx context.Context, id string) (Planification, error)
}

// ParticipantService manages the participant roster of a planification and
// the invitation response flow.
type ParticipantService struct {
	participants ParticipantDirectory
	contacts     ContactResolver
	roles        RoleLookup
	plans        PlanificationLookup
	notifier     Notifier
	audit        AuditLog
	secret       []byte
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewParticipantService wires dependencies for the participant manager.
func NewParticipantService(participants ParticipantDirectory, contacts ContactResolver, roles RoleLookup, plans PlanificationLookup, notifier Notifier, audit AuditLog, secret []byte, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ParticipantService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ParticipantService{
		participants: participants,
		contacts:     contacts,
		roles:        roles,
		plans:        plans,
		notifier:     notifier,
		audit:        audit,
		secret:       secret,
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

func (s *ParticipantService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ParticipantService", operation, attrs...)
}

// AddParticipant attaches an identity to a planification. Exactly one of
// employee or partner must be given; the same identity cannot be added to
// the same planification twice.
func (s *ParticipantService) AddParticipant(ctx context.Context, principal Principal, planificationID string, identity Identity, roleID *string, isPV bool) (participant Participant, err error) {
	logger := s.loggerWith(ctx, "AddParticipant", "principal_id", principal.UserID, "planification_id", planificationID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to add participant", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("participant_id", participant.ID).InfoContext(ctx, "participant added")
	}()

	var plan Planification
	plan, err = s.plans.GetPlanification(ctx, planificationID)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if plan.State.Terminal() {
		err = &PreconditionError{Reason: fmt.Sprintf("cannot modify participants of a planification in state %q", plan.State)}
		return
	}

	hasEmployee := identity.EmployeeID != nil && *identity.EmployeeID != ""
	hasPartner := identity.PartnerID != nil && *identity.PartnerID != ""
	if hasEmployee == hasPartner {
		vErr := &ValidationError{}
		vErr.add("identity", "a participant must reference exactly one of an employee or an external partner")
		err = vErr
		return
	}

	var contact Contact
	if hasEmployee {
		contact, err = s.contacts.ResolveEmployee(ctx, *identity.EmployeeID)
	} else {
		contact, err = s.contacts.ResolvePartner(ctx, *identity.PartnerID)
	}
	if err != nil {
		err = mapRepoError(err)
		return
	}

	var roleName string
	if roleID != nil {
		var role Role
		role, err = s.roles.GetRole(ctx, *roleID)
		if err != nil {
			err = mapRepoError(err)
			return
		}
		roleName = role.Name
	}

	if vErr := validateRoleAssignment(roleName, isPV, contact); vErr != nil {
		err = vErr
		return
	}

	now := s.now()
	participant = Participant{
		ID:               s.idGenerator(),
		PlanificationID:  planificationID,
		Identity:         identity,
		Name:             contact.Name,
		Email:            contact.Email,
		UserID:           contact.UserID,
		RoleID:           roleID,
		RoleName:         roleName,
		IsPV:             isPV,
		InvitationStatus: InvitationPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	participant, err = s.participants.CreateParticipant(ctx, participant)
	if err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			err = &DuplicateError{Field: "identity", Value: contact.Name}
			return
		}
		err = mapRepoError(err)
		return
	}
	return
}

// AssignRole changes a participant's role and PV designation. Host and PV
// writer both require a resolvable user account.
func (s *ParticipantService) AssignRole(ctx context.Context, principal Principal, participantID string, roleID *string, isPV bool) (participant Participant, err error) {
	logger := s.loggerWith(ctx, "AssignRole", "principal_id", principal.UserID, "participant_id", participantID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to assign role", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	participant, err = s.participants.GetParticipant(ctx, participantID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	var roleName string
	if roleID != nil {
		var role Role
		role, err = s.roles.GetRole(ctx, *roleID)
		if err != nil {
			err = mapRepoError(err)
			return
		}
		roleName = role.Name
	}

	contact := Contact{Name: participant.Name, Email: participant.Email, UserID: participant.UserID}
	if vErr := validateRoleAssignment(roleName, isPV, contact); vErr != nil {
		err = vErr
		return
	}

	becameHost := roleName == RoleNameHost && !participant.IsHost()

	participant.RoleID = roleID
	participant.RoleName = roleName
	participant.IsPV = isPV
	participant.UpdatedAt = s.now()

	participant, err = s.participants.UpdateParticipant(ctx, participant)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	if becameHost && s.notifier != nil && participant.HasUser() {
		if nErr := s.notifier.Notify(ctx, *participant.UserID, "You are the meeting host", fmt.Sprintf("You have been designated as host for planification %s.", participant.PlanificationID)); nErr != nil {
			logger.WarnContext(ctx, "host notification failed", "error", nErr)
		}
	}
	s.recordAudit(ctx, principal, "participant.role_assigned", participant.ID, fmt.Sprintf("role=%s pv=%t", roleName, isPV))
	return
}

// RemoveParticipant detaches a participant from its planification.
func (s *ParticipantService) RemoveParticipant(ctx context.Context, principal Principal, participantID string) (err error) {
	logger := s.loggerWith(ctx, "RemoveParticipant", "principal_id", principal.UserID, "participant_id", participantID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to remove participant", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	var participant Participant
	participant, err = s.participants.GetParticipant(ctx, participantID)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if participant.MeetingID != nil {
		err = &PreconditionError{Reason: "participant is attached to a materialized meeting"}
		return
	}
	err = mapRepoError(s.participants.DeleteParticipant(ctx, participantID))
	return
}

// ListParticipants enumerates the roster of a planification.
func (s *ParticipantService) ListParticipants(ctx context.Context, planificationID string) ([]Participant, error) {
	participants, err := s.participants.ListParticipants(ctx, planificationID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return participants, nil
}

// GenerateToken derives the participant's access token and persists it if
// the participant does not hold one yet. Derivation is deterministic, so
// regenerating yields the token already on record.
func (s *ParticipantService) GenerateToken(ctx context.Context, principal Principal, participantID string) (token string, err error) {
	logger := s.loggerWith(ctx, "GenerateToken", "principal_id", principal.UserID, "participant_id", participantID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to generate access token", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	var participant Participant
	participant, err = s.participants.GetParticipant(ctx, participantID)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	token, err = s.participants.SetAccessTokenIfEmpty(ctx, participant.ID, AccessToken(s.secret, participant.ID, participant.PlanificationID))
	if err != nil {
		err = mapRepoError(err)
	}
	return
}

// Respond records an invitation answer presented through a tokenized link.
// The token must match the participant's access token exactly and the
// participant must belong to the referenced planification. A second answer
// does not overwrite the first: the call reports the earlier status instead.
func (s *ParticipantService) Respond(ctx context.Context, planificationID, participantID, token string, accept bool) (result RespondResult, err error) {
	logger := s.loggerWith(ctx, "Respond", "planification_id", planificationID, "participant_id", participantID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to record invitation response", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("status", string(result.Status), "already_responded", result.AlreadyResponded).InfoContext(ctx, "invitation response recorded")
	}()

	var participant Participant
	participant, err = s.participants.GetParticipant(ctx, participantID)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if participant.PlanificationID != planificationID {
		err = ErrParticipantMismatch
		return
	}
	if participant.AccessToken == "" || !TokenMatches(participant.AccessToken, token) {
		err = ErrInvalidToken
		return
	}

	status := InvitationDeclined
	if accept {
		status = InvitationAccepted
	}

	uErr := s.participants.UpdateInvitationStatus(ctx, participant.ID, InvitationPending, status)
	switch {
	case uErr == nil:
		participant.InvitationStatus = status
		result = RespondResult{Participant: participant, Status: status}
		s.recordAudit(ctx, Principal{}, "invitation.responded", participant.ID, string(status))
	case errors.Is(uErr, persistence.ErrStale):
		// Someone answered first, or the same link was followed twice.
		participant, err = s.participants.GetParticipant(ctx, participant.ID)
		if err != nil {
			err = mapRepoError(err)
			return
		}
		result = RespondResult{Participant: participant, Status: participant.InvitationStatus, AlreadyResponded: true}
	default:
		err = mapRepoError(uErr)
	}
	return
}

func (s *ParticipantService) recordAudit(ctx context.Context, principal Principal, event, participantID, message string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, AuditEntry{
		EntityKind: "participant",
		EntityID:   participantID,
		Event:      event,
		ActorID:    principal.UserID,
		Message:    message,
	})
}

func validateRoleAssignment(roleName string, isPV bool, contact Contact) *ValidationError {
	vErr := &ValidationError{}
	hasUser := contact.UserID != nil && *contact.UserID != ""
	if roleName == RoleNameHost && !hasUser {
		vErr.add("role", "the host must have an internal user account")
	}
	if isPV && !hasUser {
		vErr.add("pv", "the PV writer must have an internal user account")
	}
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}
