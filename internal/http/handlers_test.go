package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/meeting-planner/internal/application"
	"github.com/example/meeting-planner/internal/testfixtures"
)

func newTestRouter(cfg RouterConfig) http.Handler {
	cfg.Middleware = append(cfg.Middleware, PrincipalFromHeaders())
	return NewRouter(cfg)
}

func decodeErrorResponse(t *testing.T, body string) errorResponse {
	t.Helper()
	var resp errorResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("decode error response: %v (body %q)", err, body)
	}
	return resp
}

func TestInvitationEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("every link failure renders the same message", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name string
			err  error
		}{
			{name: "invalid token", err: application.ErrInvalidToken},
			{name: "participant from another planification", err: application.ErrParticipantMismatch},
			{name: "unknown participant", err: application.ErrNotFound},
		}

		for _, tc := range tests {
			tc := tc
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()

				router := newTestRouter(RouterConfig{
					Invitations: NewInvitationHandler(fakeInvitationService{err: tc.err}, nil),
				})

				req := httptest.NewRequest(http.MethodPost, "/invitations/plan-1/part-1/tok-1", strings.NewReader(`{"accept":true}`))
				recorder := httptest.NewRecorder()
				router.ServeHTTP(recorder, req)

				if recorder.Code != http.StatusNotFound {
					t.Fatalf("status = %d, want %d", recorder.Code, http.StatusNotFound)
				}
				resp := decodeErrorResponse(t, recorder.Body.String())
				if resp.Message != invitationLinkMessage {
					t.Fatalf("message = %q, want %q", resp.Message, invitationLinkMessage)
				}
				if resp.ErrorCode != "" || len(resp.Errors) != 0 {
					t.Fatalf("response leaks details: %+v", resp)
				}
			})
		}
	})

	t.Run("reports an earlier answer without mutating", func(t *testing.T) {
		t.Parallel()

		router := newTestRouter(RouterConfig{
			Invitations: NewInvitationHandler(fakeInvitationService{
				result: application.RespondResult{Status: application.InvitationAccepted, AlreadyResponded: true},
			}, nil),
		})

		req := httptest.NewRequest(http.MethodPost, "/invitations/plan-1/part-1/tok-1", strings.NewReader(`{"accept":false}`))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", recorder.Code, http.StatusOK)
		}
		var resp respondResponse
		if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Status != string(application.InvitationAccepted) || !resp.AlreadyResponded {
			t.Fatalf("response = %+v, want earlier accepted answer", resp)
		}
	})

	t.Run("rejects other methods", func(t *testing.T) {
		t.Parallel()

		router := newTestRouter(RouterConfig{
			Invitations: NewInvitationHandler(fakeInvitationService{}, nil),
		})

		req := httptest.NewRequest(http.MethodGet, "/invitations/plan-1/part-1/tok-1", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusMethodNotAllowed {
			t.Fatalf("status = %d, want %d", recorder.Code, http.StatusMethodNotAllowed)
		}
		if allow := recorder.Header().Get("Allow"); allow != http.MethodPost {
			t.Fatalf("Allow = %q, want %q", allow, http.MethodPost)
		}
	})
}

func TestPlanificationHandlers(t *testing.T) {
	t.Parallel()

	t.Run("mutations require a principal", func(t *testing.T) {
		t.Parallel()

		router := newTestRouter(RouterConfig{
			Planifications: NewPlanificationHandler(&fakePlanificationService{}, nil),
		})

		req := httptest.NewRequest(http.MethodPost, "/planifications/plan-1/plan", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want %d", recorder.Code, http.StatusUnauthorized)
		}
	})

	t.Run("reservation conflicts map to 409 with a conflict payload", func(t *testing.T) {
		t.Parallel()

		service := &fakePlanificationService{
			planErr: &application.ConflictError{
				ResourceKind:  "room",
				ResourceID:    "room-1",
				ResourceLabel: "Salle A",
				ReservationID: "res-9",
			},
		}
		router := newTestRouter(RouterConfig{
			Planifications: NewPlanificationHandler(service, nil),
		})

		req := httptest.NewRequest(http.MethodPost, "/planifications/plan-1/plan", nil)
		req.Header.Set("X-User-ID", "user-1")
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusConflict {
			t.Fatalf("status = %d, want %d", recorder.Code, http.StatusConflict)
		}
		resp := decodeErrorResponse(t, recorder.Body.String())
		if resp.ErrorCode != "RESERVATION_CONFLICT" {
			t.Fatalf("error_code = %q, want RESERVATION_CONFLICT", resp.ErrorCode)
		}
		if resp.Conflict == nil {
			t.Fatal("expected a conflict payload")
		}
		if resp.Conflict.ResourceID != "room-1" || resp.Conflict.ResourceLabel != "Salle A" || resp.Conflict.ReservationID != "res-9" {
			t.Fatalf("conflict payload = %+v", resp.Conflict)
		}
		if service.planCalls != 1 {
			t.Fatalf("Plan called %d times, want 1", service.planCalls)
		}
	})

	t.Run("validation failures map to 422 with field errors", func(t *testing.T) {
		t.Parallel()

		vErr := &application.ValidationError{FieldErrors: map[string]string{"start": "must be in the future"}}
		router := newTestRouter(RouterConfig{
			Planifications: NewPlanificationHandler(&fakePlanificationService{confirmErr: vErr}, nil),
		})

		req := httptest.NewRequest(http.MethodPost, "/planifications/plan-1/confirm", nil)
		req.Header.Set("X-User-ID", "user-1")
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want %d", recorder.Code, http.StatusUnprocessableEntity)
		}
		resp := decodeErrorResponse(t, recorder.Body.String())
		if resp.Errors["start"] != "must be in the future" {
			t.Fatalf("errors = %+v", resp.Errors)
		}
	})

	t.Run("starting twice maps to 409 already materialized", func(t *testing.T) {
		t.Parallel()

		router := newTestRouter(RouterConfig{
			Planifications: NewPlanificationHandler(&fakePlanificationService{startErr: application.ErrAlreadyMaterialized}, nil),
		})

		req := httptest.NewRequest(http.MethodPost, "/planifications/plan-1/start", nil)
		req.Header.Set("X-User-ID", "user-1")
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusConflict {
			t.Fatalf("status = %d, want %d", recorder.Code, http.StatusConflict)
		}
		resp := decodeErrorResponse(t, recorder.Body.String())
		if resp.ErrorCode != "ALREADY_MATERIALIZED" {
			t.Fatalf("error_code = %q, want ALREADY_MATERIALIZED", resp.ErrorCode)
		}
	})

	t.Run("unknown transitions return 404", func(t *testing.T) {
		t.Parallel()

		router := newTestRouter(RouterConfig{
			Planifications: NewPlanificationHandler(&fakePlanificationService{}, nil),
		})

		req := httptest.NewRequest(http.MethodPost, "/planifications/plan-1/archive", nil)
		req.Header.Set("X-User-ID", "user-1")
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want %d", recorder.Code, http.StatusNotFound)
		}
	})

	t.Run("conflict preview renders reservations", func(t *testing.T) {
		t.Parallel()

		start := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
		service := &fakePlanificationService{previews: []application.ConflictPreview{{
			ResourceKind:    "room",
			ResourceID:      "room-1",
			ResourceLabel:   "Room: Salle A",
			ReservationID:   "res-9",
			PlanificationID: "plan-2",
			Start:           start,
			End:             start.Add(time.Hour),
		}}}
		router := newTestRouter(RouterConfig{
			Planifications: NewPlanificationHandler(service, nil),
		})

		req := httptest.NewRequest(http.MethodGet, "/planifications/plan-1/conflicts", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", recorder.Code, http.StatusOK)
		}
		var resp conflictPreviewResponse
		if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode conflicts response: %v", err)
		}
		if len(resp.Conflicts) != 1 {
			t.Fatalf("conflicts = %+v, want one entry", resp.Conflicts)
		}
		got := resp.Conflicts[0]
		if got.ReservationID != "res-9" || got.ResourceID != "room-1" || got.PlanificationID != "plan-2" {
			t.Errorf("unexpected conflict payload: %+v", got)
		}
		if got.Start != "2026-03-02T10:00:00Z" || got.End != "2026-03-02T11:00:00Z" {
			t.Errorf("conflict interval = %s - %s", got.Start, got.End)
		}
	})

	t.Run("list parses query filters", func(t *testing.T) {
		t.Parallel()

		service := &fakePlanificationService{}
		router := newTestRouter(RouterConfig{
			Planifications: NewPlanificationHandler(service, nil),
		})

		req := httptest.NewRequest(http.MethodGet, "/planifications?state=confirmed&state=planned&room_id=room-1&starts_after=2026-03-02T09:00:00Z", nil)
		req.Header.Set("X-User-ID", "user-1")
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d (body %s)", recorder.Code, http.StatusOK, recorder.Body.String())
		}
		query := service.lastQuery
		if len(query.States) != 2 || query.States[0] != application.StateConfirmed || query.States[1] != application.StatePlanned {
			t.Fatalf("states = %v", query.States)
		}
		if query.RoomID == nil || *query.RoomID != "room-1" {
			t.Fatalf("room filter = %v", query.RoomID)
		}
		want := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
		if query.StartsAfter == nil || !query.StartsAfter.Equal(want) {
			t.Fatalf("starts_after = %v, want %v", query.StartsAfter, want)
		}
	})
}

type fakeInvitationService struct {
	result application.RespondResult
	err    error
}

func (f fakeInvitationService) Respond(ctx context.Context, planificationID, participantID, token string, accept bool) (application.RespondResult, error) {
	return f.result, f.err
}

type fakePlanificationService struct {
	planErr    error
	confirmErr error
	startErr   error
	previews   []application.ConflictPreview
	planCalls  int
	lastQuery  application.PlanificationQuery
}

func (f *fakePlanificationService) CreatePlanification(ctx context.Context, principal application.Principal, input application.PlanificationInput) (application.Planification, error) {
	return application.Planification{}, nil
}

func (f *fakePlanificationService) UpdatePlanification(ctx context.Context, principal application.Principal, id string, input application.PlanificationInput) (application.Planification, error) {
	return application.Planification{}, nil
}

func (f *fakePlanificationService) GetPlanification(ctx context.Context, id string) (application.Planification, error) {
	return application.Planification{ID: id}, nil
}

func (f *fakePlanificationService) ListPlanifications(ctx context.Context, query application.PlanificationQuery) ([]application.Planification, error) {
	f.lastQuery = query
	return nil, nil
}

func (f *fakePlanificationService) DeletePlanification(ctx context.Context, principal application.Principal, id string) error {
	return nil
}

func (f *fakePlanificationService) Confirm(ctx context.Context, principal application.Principal, id string) (application.Planification, error) {
	if f.confirmErr != nil {
		return application.Planification{}, f.confirmErr
	}
	return application.Planification{ID: id, State: application.StateConfirmed}, nil
}

func (f *fakePlanificationService) Plan(ctx context.Context, principal application.Principal, id string) (application.Planification, error) {
	f.planCalls++
	if f.planErr != nil {
		return application.Planification{}, f.planErr
	}
	return application.Planification{ID: id, State: application.StatePlanned}, nil
}

func (f *fakePlanificationService) Start(ctx context.Context, principal application.Principal, id string) (application.StartResult, error) {
	if f.startErr != nil {
		return application.StartResult{}, f.startErr
	}
	return application.StartResult{Meeting: application.Meeting{ID: "meet-1", PlanificationID: id}}, nil
}

func (f *fakePlanificationService) Cancel(ctx context.Context, principal application.Principal, id string) (application.Planification, error) {
	return application.Planification{ID: id, State: application.StateCancelled}, nil
}

func (f *fakePlanificationService) Done(ctx context.Context, principal application.Principal, id string) (application.Planification, error) {
	return application.Planification{ID: id, State: application.StateDone}, nil
}

func (f *fakePlanificationService) ResetToDraft(ctx context.Context, principal application.Principal, id string) (application.Planification, error) {
	return application.Planification{ID: id, State: application.StateDraft}, nil
}

func (f *fakePlanificationService) PreviewConflicts(ctx context.Context, id string) ([]application.ConflictPreview, error) {
	return f.previews, nil
}

func TestMeetingHandlers(t *testing.T) {
	t.Parallel()

	t.Run("get renders the meeting", func(t *testing.T) {
		t.Parallel()

		fixture := testfixtures.NewMeetingFixture(
			testfixtures.WithMeetingID("meet-1"),
			testfixtures.WithMeetingActualStart(time.Date(2026, time.March, 2, 10, 5, 0, 0, time.UTC)),
		)
		router := newTestRouter(RouterConfig{
			Meetings: NewMeetingHandler(&fakeMeetingService{meeting: fixture.Application()}, nil),
		})

		req := httptest.NewRequest(http.MethodGet, "/meetings/meet-1", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", recorder.Code, http.StatusOK)
		}
		var resp meetingResponse
		if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode meeting response: %v", err)
		}
		if resp.Meeting.ID != "meet-1" || resp.Meeting.State != "in_progress" {
			t.Errorf("unexpected meeting payload: %+v", resp.Meeting)
		}
		if resp.Meeting.ActualStart == nil || *resp.Meeting.ActualStart != "2026-03-02T10:05:00Z" {
			t.Errorf("actual_start = %v", resp.Meeting.ActualStart)
		}
	})

	t.Run("join requires a principal", func(t *testing.T) {
		t.Parallel()

		router := newTestRouter(RouterConfig{
			Meetings: NewMeetingHandler(&fakeMeetingService{}, nil),
		})

		req := httptest.NewRequest(http.MethodPost, "/meetings/meet-1/join", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want %d", recorder.Code, http.StatusUnauthorized)
		}
	})
}

func TestActionHandlers(t *testing.T) {
	t.Parallel()

	t.Run("get renders the action", func(t *testing.T) {
		t.Parallel()

		fixture := testfixtures.NewActionFixture(
			testfixtures.WithActionID("action-1"),
			testfixtures.WithActionMeeting("meet-1"),
			testfixtures.WithActionStatus(application.ActionInProgress),
		)
		router := newTestRouter(RouterConfig{
			Actions: NewActionHandler(&fakeActionService{action: fixture.Application()}, nil),
		})

		req := httptest.NewRequest(http.MethodGet, "/actions/action-1", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", recorder.Code, http.StatusOK)
		}
		var resp actionResponse
		if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode action response: %v", err)
		}
		if resp.Action.ID != "action-1" || resp.Action.Status != "in_progress" {
			t.Errorf("unexpected action payload: %+v", resp.Action)
		}
		if resp.Action.MeetingID == nil || *resp.Action.MeetingID != "meet-1" {
			t.Errorf("meeting_id = %v", resp.Action.MeetingID)
		}
	})

	t.Run("status update forwards the requested status", func(t *testing.T) {
		t.Parallel()

		service := &fakeActionService{action: testfixtures.NewActionFixture(testfixtures.WithActionID("action-1")).Application()}
		router := newTestRouter(RouterConfig{
			Actions: NewActionHandler(service, nil),
		})

		req := httptest.NewRequest(http.MethodPut, "/actions/action-1/status", strings.NewReader(`{"status":"done"}`))
		req.Header.Set("X-User-ID", "user-1")
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", recorder.Code, http.StatusOK)
		}
		if service.lastStatus != application.ActionDone {
			t.Errorf("forwarded status = %s, want done", service.lastStatus)
		}
	})
}

type fakeMeetingService struct {
	meeting application.Meeting
}

func (f *fakeMeetingService) GetMeeting(ctx context.Context, id string) (application.Meeting, error) {
	return f.meeting, nil
}

func (f *fakeMeetingService) Join(ctx context.Context, principal application.Principal, meetingID string) (application.Session, error) {
	return application.Session{}, nil
}

func (f *fakeMeetingService) Leave(ctx context.Context, principal application.Principal, meetingID string) (application.Session, error) {
	return application.Session{}, nil
}

func (f *fakeMeetingService) Complete(ctx context.Context, principal application.Principal, meetingID, pv string) (application.Meeting, error) {
	return f.meeting, nil
}

func (f *fakeMeetingService) AddNote(ctx context.Context, principal application.Principal, meetingID, content string) (application.MeetingNote, error) {
	return application.MeetingNote{}, nil
}

func (f *fakeMeetingService) AddDecision(ctx context.Context, principal application.Principal, meetingID string, decision application.MeetingDecision) (application.MeetingDecision, error) {
	return decision, nil
}

func (f *fakeMeetingService) ListNotes(ctx context.Context, meetingID string) ([]application.MeetingNote, error) {
	return nil, nil
}

func (f *fakeMeetingService) ListDecisions(ctx context.Context, meetingID string) ([]application.MeetingDecision, error) {
	return nil, nil
}

func (f *fakeMeetingService) GenerateSummary(ctx context.Context, principal application.Principal, meetingID string) (application.MeetingSummary, error) {
	return application.MeetingSummary{}, nil
}

func (f *fakeMeetingService) GetSummary(ctx context.Context, meetingID string) (application.MeetingSummary, error) {
	return application.MeetingSummary{}, nil
}

type fakeActionService struct {
	action     application.Action
	lastStatus application.ActionStatus
}

func (f *fakeActionService) CreateAction(ctx context.Context, principal application.Principal, input application.ActionInput) (application.Action, error) {
	return f.action, nil
}

func (f *fakeActionService) GetAction(ctx context.Context, id string) (application.Action, error) {
	return f.action, nil
}

func (f *fakeActionService) ListActions(ctx context.Context, query application.ActionQuery) ([]application.Action, error) {
	return []application.Action{f.action}, nil
}

func (f *fakeActionService) UpdateAction(ctx context.Context, principal application.Principal, id string, input application.ActionInput) (application.Action, error) {
	return f.action, nil
}

func (f *fakeActionService) UpdateStatus(ctx context.Context, principal application.Principal, id string, status application.ActionStatus) (application.Action, error) {
	f.lastStatus = status
	action := f.action
	action.Status = status
	return action, nil
}

func (f *fakeActionService) Reparent(ctx context.Context, principal application.Principal, id string, parentID *string) (application.Action, error) {
	return f.action, nil
}

func (f *fakeActionService) DeleteAction(ctx context.Context, principal application.Principal, id string) error {
	return nil
}
