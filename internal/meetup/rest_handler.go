package meetup

import (
	"net/http"

	"github.com/gorilla/mux"

	"messaging/internal/api"
	"messaging/internal/identity"
	"messaging/internal/models"
)

type JSONHandler struct {
	service  *Service
	identity *identity.Reader
}

func NewJSONHandler(service *Service, reader *identity.Reader) *JSONHandler {
	return &JSONHandler{
		service:  service,
		identity: reader,
	}
}

func (h *JSONHandler) GetMeetups(w http.ResponseWriter, r *http.Request, _ models.Profile) {
	meetups, err := h.service.List(r.Context())
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, meetups)
}

func (h *JSONHandler) CreateMeetup(w http.ResponseWriter, r *http.Request, caller models.Profile) {
	var req CreateMeetupRequest
	if err := api.DecodeAndValidate(r, &req); err != nil {
		api.WriteError(w, err)
		return
	}

	meetup, err := h.service.Create(r.Context(), caller, req)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, meetup)
}

func (h *JSONHandler) GetJoinedMeetups(w http.ResponseWriter, r *http.Request, caller models.Profile) {
	meetups, err := h.service.Joined(r.Context(), caller)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, meetups)
}

func (h *JSONHandler) JoinMeetup(w http.ResponseWriter, r *http.Request, caller models.Profile) {
	var req JoinMeetupRequest
	if err := api.DecodeAndValidate(r, &req); err != nil {
		api.WriteError(w, err)
		return
	}

	if err := h.service.Join(r.Context(), caller, req.ID); err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteText(w, http.StatusOK, "User joined the specified event.")
}

// SetupJSONRoutes keeps the /v1/events paths the web client already calls.
func SetupJSONRoutes(r *mux.Router, h *JSONHandler) {
	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/events", h.identity.Require(h.GetMeetups)).Methods(http.MethodGet)
	v1.HandleFunc("/events", h.identity.Require(h.CreateMeetup)).Methods(http.MethodPost)
	v1.HandleFunc("/events/join", h.identity.Require(h.GetJoinedMeetups)).Methods(http.MethodGet)
	v1.HandleFunc("/events/join", h.identity.Require(h.JoinMeetup)).Methods(http.MethodPost)
}
