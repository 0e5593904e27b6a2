// Package http exposes the service's inbound HTTP surface: the recording
// webhook that triggers post-call processing, and call-session
// registration.
package http

import (
	"encoding/json"
	"net/http"

	"voice-agent-bridge/internal/observability/logging"
	"voice-agent-bridge/internal/observability/metrics"
	"voice-agent-bridge/internal/pipeline"
	"voice-agent-bridge/internal/session"
)

// EventEgressEnded is the only webhook event that triggers processing.
const EventEgressEnded = "egress_ended"

// Scheduler starts a pipeline run without blocking the caller.
type Scheduler interface {
	Schedule(job pipeline.Job)
}

// FileResult is one recorded file reported by the media egress.
type FileResult struct {
	Filename string `json:"filename"`
	Location string `json:"location"`
}

// EgressInfo describes the finished egress in a webhook event.
type EgressInfo struct {
	EgressID    string       `json:"egressId"`
	RoomName    string       `json:"roomName"`
	FileResults []FileResult `json:"fileResults"`
}

// WebhookEvent is the inbound media-server webhook envelope. Fields not
// needed for processing are ignored.
type WebhookEvent struct {
	Event      string      `json:"event"`
	EgressInfo *EgressInfo `json:"egressInfo"`
}

// RegisterCallRequest registers caller metadata for an upcoming or active
// call so the finished transcript can be attributed.
type RegisterCallRequest struct {
	RoomName    string `json:"roomName"`
	PhoneNumber string `json:"phoneNumber"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
}

// Handler serves webhook and call-registration requests.
type Handler struct {
	scheduler Scheduler
	processed *session.ProcessedSet
	sessions  *session.Store
	metrics   *metrics.Metrics
}

// NewHandler wires a Handler.
func NewHandler(scheduler Scheduler, processed *session.ProcessedSet, sessions *session.Store) *Handler {
	return &Handler{
		scheduler: scheduler,
		processed: processed,
		sessions:  sessions,
		metrics:   metrics.DefaultMetrics,
	}
}

// HandleWebhook ingests media-server events. Every well-formed event is
// answered 200 with a status; redelivering an already-handled event must
// never re-run the pipeline, and an event without recorded files must not
// poison the identifier so a later complete redelivery still processes.
func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	logger := logging.WithComponent("webhook")

	var event WebhookEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		logger.Warn().Err(err).Msg("Failed to decode webhook body")
		writeStatus(w, http.StatusBadRequest, "invalid_body")
		return
	}

	if event.Event != EventEgressEnded || event.EgressInfo == nil || event.EgressInfo.EgressID == "" {
		logger.Debug().Str("event", event.Event).Msg("Ignoring webhook event")
		h.metrics.RecordEventIgnored()
		writeStatus(w, http.StatusOK, "ignored")
		return
	}

	info := event.EgressInfo
	logger = logger.With().Str("roomName", info.RoomName).Str("egressId", info.EgressID).Logger()

	if h.processed.Seen(info.EgressID) {
		logger.Info().Msg("Duplicate recording event, already processed")
		h.metrics.RecordEventDuplicate()
		writeStatus(w, http.StatusOK, "duplicate")
		return
	}

	location := recordingLocation(info.FileResults)
	if location == "" {
		// Do not mark the event processed: a later redelivery that does
		// carry file results must still be accepted.
		logger.Warn().Msg("Recording event carries no files")
		h.metrics.RecordEventEmpty()
		writeStatus(w, http.StatusOK, "no_files")
		return
	}

	if !h.processed.MarkProcessed(info.EgressID) {
		logger.Info().Msg("Duplicate recording event, lost the race")
		h.metrics.RecordEventDuplicate()
		writeStatus(w, http.StatusOK, "duplicate")
		return
	}

	h.metrics.RecordEventAccepted()
	logger.Info().Str("location", location).Msg("Recording event accepted")
	h.scheduler.Schedule(pipeline.Job{
		EgressID: info.EgressID,
		RoomName: info.RoomName,
		Location: location,
	})
	writeStatus(w, http.StatusOK, "accepted")
}

// HandleRegisterCall stores caller metadata keyed by room name.
func (h *Handler) HandleRegisterCall(w http.ResponseWriter, r *http.Request) {
	logger := logging.WithComponent("calls")

	var req RegisterCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn().Err(err).Msg("Failed to decode call registration")
		writeStatus(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if req.RoomName == "" {
		writeStatus(w, http.StatusBadRequest, "missing_room_name")
		return
	}

	h.sessions.Put(req.RoomName, session.Caller{
		PhoneNumber: req.PhoneNumber,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
	})
	logger.Info().Str("roomName", req.RoomName).Msg("Call session registered")
	writeStatus(w, http.StatusOK, "registered")
}

// recordingLocation picks the recording to process from the reported
// files: the first entry with a location, falling back to its filename.
func recordingLocation(files []FileResult) string {
	for _, f := range files {
		if f.Location != "" {
			return f.Location
		}
		if f.Filename != "" {
			return f.Filename
		}
	}
	return ""
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}
