package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"voice-agent-bridge/internal/pipeline"
	"voice-agent-bridge/internal/session"
)

type fakeScheduler struct {
	mu   sync.Mutex
	jobs []pipeline.Job
}

func (s *fakeScheduler) Schedule(job pipeline.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
}

func (s *fakeScheduler) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

func newTestHandler() (*Handler, *fakeScheduler, *session.Store) {
	scheduler := &fakeScheduler{}
	sessions := session.NewStore()
	h := NewHandler(scheduler, session.NewProcessedSet(), sessions)
	return h, scheduler, sessions
}

func postWebhook(t *testing.T, h *Handler, body string) (*httptest.ResponseRecorder, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleWebhook(rec, req)

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return rec, resp["status"]
}

func egressEndedBody(egressId, location string) string {
	return fmt.Sprintf(`{
		"event": "egress_ended",
		"egressInfo": {
			"egressId": %q,
			"roomName": "call-+15551234567",
			"fileResults": [{"filename": "call.ogg", "location": %q}]
		}
	}`, egressId, location)
}

func TestHandleWebhookAcceptsEgressEnded(t *testing.T) {
	h, scheduler, _ := newTestHandler()

	rec, status := postWebhook(t, h, egressEndedBody("EG_1", "s3://recordings/rooms/call.ogg"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d, want 200", rec.Code)
	}
	if status != "accepted" {
		t.Fatalf("status = %q, want accepted", status)
	}
	if scheduler.count() != 1 {
		t.Fatalf("scheduled %d jobs, want 1", scheduler.count())
	}
	job := scheduler.jobs[0]
	if job.EgressID != "EG_1" || job.RoomName != "call-+15551234567" || job.Location != "s3://recordings/rooms/call.ogg" {
		t.Errorf("unexpected job: %+v", job)
	}
}

func TestHandleWebhookDuplicateEvent(t *testing.T) {
	h, scheduler, _ := newTestHandler()

	_, first := postWebhook(t, h, egressEndedBody("EG_1", "s3://recordings/a.ogg"))
	_, second := postWebhook(t, h, egressEndedBody("EG_1", "s3://recordings/a.ogg"))

	if first != "accepted" || second != "duplicate" {
		t.Errorf("statuses = %q, %q; want accepted, duplicate", first, second)
	}
	if scheduler.count() != 1 {
		t.Errorf("scheduled %d jobs for redelivered event, want 1", scheduler.count())
	}
}

func TestHandleWebhookDistinctEgressIDsBothProcess(t *testing.T) {
	h, scheduler, _ := newTestHandler()

	_, first := postWebhook(t, h, egressEndedBody("EG_1", "s3://recordings/a.ogg"))
	_, second := postWebhook(t, h, egressEndedBody("EG_2", "s3://recordings/b.ogg"))

	if first != "accepted" || second != "accepted" {
		t.Errorf("statuses = %q, %q; want both accepted", first, second)
	}
	if scheduler.count() != 2 {
		t.Errorf("scheduled %d jobs, want 2", scheduler.count())
	}
}

func TestHandleWebhookNoFilesThenRedelivery(t *testing.T) {
	h, scheduler, _ := newTestHandler()

	empty := `{"event": "egress_ended", "egressInfo": {"egressId": "EG_1", "roomName": "r", "fileResults": []}}`
	_, first := postWebhook(t, h, empty)
	if first != "no_files" {
		t.Fatalf("status = %q, want no_files", first)
	}
	if scheduler.count() != 0 {
		t.Fatal("scheduled a job for an event without files")
	}

	// The empty delivery must not consume the identifier.
	_, second := postWebhook(t, h, egressEndedBody("EG_1", "s3://recordings/a.ogg"))
	if second != "accepted" {
		t.Errorf("redelivery with files: status = %q, want accepted", second)
	}
	if scheduler.count() != 1 {
		t.Errorf("scheduled %d jobs, want 1", scheduler.count())
	}
}

func TestHandleWebhookIgnoresOtherEvents(t *testing.T) {
	h, scheduler, _ := newTestHandler()

	tests := []struct {
		name string
		body string
	}{
		{"other event type", `{"event": "room_started", "egressInfo": {"egressId": "EG_1"}}`},
		{"missing egress info", `{"event": "egress_ended"}`},
		{"missing egress id", `{"event": "egress_ended", "egressInfo": {"roomName": "r"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, status := postWebhook(t, h, tt.body)
			if rec.Code != http.StatusOK {
				t.Errorf("status code = %d, want 200", rec.Code)
			}
			if status != "ignored" {
				t.Errorf("status = %q, want ignored", status)
			}
		})
	}
	if scheduler.count() != 0 {
		t.Errorf("scheduled %d jobs for ignored events", scheduler.count())
	}
}

func TestHandleWebhookMalformedBody(t *testing.T) {
	h, scheduler, _ := newTestHandler()

	rec, status := postWebhook(t, h, "{not json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status code = %d, want 400", rec.Code)
	}
	if status != "invalid_body" {
		t.Errorf("status = %q, want invalid_body", status)
	}
	if scheduler.count() != 0 {
		t.Error("scheduled a job for a malformed body")
	}
}

func TestHandleWebhookFallsBackToFilename(t *testing.T) {
	h, scheduler, _ := newTestHandler()

	body := `{
		"event": "egress_ended",
		"egressInfo": {
			"egressId": "EG_1",
			"roomName": "r",
			"fileResults": [{"filename": "s3://recordings/rooms/call.ogg", "location": ""}]
		}
	}`
	_, status := postWebhook(t, h, body)
	if status != "accepted" {
		t.Fatalf("status = %q, want accepted", status)
	}
	if scheduler.jobs[0].Location != "s3://recordings/rooms/call.ogg" {
		t.Errorf("job location = %q", scheduler.jobs[0].Location)
	}
}

func TestHandleRegisterCall(t *testing.T) {
	h, _, sessions := newTestHandler()

	body := `{"roomName": "call-+15551234567", "phoneNumber": "+15551234567", "firstName": "Ada", "lastName": "Lovelace"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/calls", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleRegisterCall(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d, want 200", rec.Code)
	}
	caller, ok := sessions.Take("call-+15551234567")
	if !ok {
		t.Fatal("session not stored")
	}
	if caller.PhoneNumber != "+15551234567" || caller.FirstName != "Ada" || caller.LastName != "Lovelace" {
		t.Errorf("stored caller = %+v", caller)
	}
}

func TestHandleRegisterCallMissingRoom(t *testing.T) {
	h, _, sessions := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/v1/calls", strings.NewReader(`{"phoneNumber": "+15551234567"}`))
	rec := httptest.NewRecorder()
	h.HandleRegisterCall(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status code = %d, want 400", rec.Code)
	}
	if sessions.Len() != 0 {
		t.Error("session stored without a room name")
	}
}
