// Package http provides HTTP handlers and middleware for the meeting planner API.
//
// The router exposes the following endpoints:
//   - GET /planifications, POST /planifications, GET/PUT/DELETE /planifications/{id}:
//     planification management exchanging the `planificationDTO` payload defined in
//     planification_handler.go. Listing accepts state, room_id, starts_after and
//     ends_before query parameters.
//   - POST /planifications/{id}/confirm|plan|start|cancel|done|reset: lifecycle
//     transitions. The plan transition writes resource reservations and reports 409
//     with a conflict payload when a slot is already taken; start materializes the
//     meeting and returns it together with the caller's own session.
//   - GET /planifications/{id}/conflicts: a read-only preview of the active
//     reservations that would block planning the planification as drafted.
//   - GET/POST /planifications/{id}/participants, DELETE /participants/{id},
//     PUT /participants/{id}/role, POST /participants/{id}/token: participant
//     roster management and invitation token issuance.
//   - POST /invitations/{planification}/{participant}/{token}: the public
//     invitation response endpoint. It requires no principal and renders one
//     generic message for every failure mode.
//   - GET /meetings/{id}, POST /meetings/{id}/join|leave|complete,
//     GET/POST /meetings/{id}/notes, GET/POST /meetings/{id}/decisions,
//     GET/POST /meetings/{id}/summary: live meeting operations, minutes capture
//     and AI summary retrieval/generation.
//   - GET /actions, POST /actions, GET/PUT/DELETE /actions/{id},
//     PUT /actions/{id}/status, PUT /actions/{id}/parent: action item tracking
//     with one level of nesting.
//   - /rooms, /equipment, /locations, /roles plus GET /rooms/{id}/status and
//     GET /equipment/{id}/status: the resource registry, handled by
//     registry_handler.go.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
