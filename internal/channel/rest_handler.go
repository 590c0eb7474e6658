package channel

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"messaging/infrastructure"
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

func (h *JSONHandler) GetChannels(w http.ResponseWriter, r *http.Request, caller models.Profile) {
	channels, err := h.service.ListChannels(r.Context(), caller)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, channels)
}

func (h *JSONHandler) CreateChannel(w http.ResponseWriter, r *http.Request, caller models.Profile) {
	var req CreateChannelRequest
	if err := api.DecodeAndValidate(r, &req); err != nil {
		api.WriteError(w, err)
		return
	}

	channel, err := h.service.CreateChannel(r.Context(), caller, req)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, channel)
}

// GetMessages answers with the latest page of messages in creation order, or
// the page before the message id given in the before query parameter.
func (h *JSONHandler) GetMessages(w http.ResponseWriter, r *http.Request, caller models.Profile) {
	channelID, ok := pathID(w, r, "channelID")
	if !ok {
		return
	}
	var before int64
	if raw := r.URL.Query().Get("before"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			api.WriteError(w, infrastructure.InvalidArgument(infrastructure.MsgInvalidCursor))
			return
		}
		before = id
	}

	messages, err := h.service.Messages(r.Context(), caller, channelID, before)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, messages)
}

func (h *JSONHandler) PostMessage(w http.ResponseWriter, r *http.Request, caller models.Profile) {
	channelID, ok := pathID(w, r, "channelID")
	if !ok {
		return
	}
	var req PostMessageRequest
	if err := api.DecodeAndValidate(r, &req); err != nil {
		api.WriteError(w, err)
		return
	}

	message, err := h.service.PostMessage(r.Context(), caller, channelID, req)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, message)
}

func (h *JSONHandler) UpdateChannel(w http.ResponseWriter, r *http.Request, caller models.Profile) {
	channelID, ok := pathID(w, r, "channelID")
	if !ok {
		return
	}
	var req UpdateChannelRequest
	if err := api.DecodeAndValidate(r, &req); err != nil {
		api.WriteError(w, err)
		return
	}

	channel, err := h.service.UpdateChannel(r.Context(), caller, channelID, req)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, channel)
}

func (h *JSONHandler) DeleteChannel(w http.ResponseWriter, r *http.Request, caller models.Profile) {
	channelID, ok := pathID(w, r, "channelID")
	if !ok {
		return
	}

	channel, err := h.service.DeleteChannel(r.Context(), caller, channelID)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteText(w, http.StatusOK, fmt.Sprintf("The %s channel was successfully deleted.", channel.Name))
}

func (h *JSONHandler) AddMember(w http.ResponseWriter, r *http.Request, caller models.Profile) {
	channelID, ok := pathID(w, r, "channelID")
	if !ok {
		return
	}
	var req MemberRequest
	if err := api.DecodeAndValidate(r, &req); err != nil {
		api.WriteError(w, err)
		return
	}

	if err := h.service.AddMember(r.Context(), caller, channelID, req.ID); err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteText(w, http.StatusCreated, "User was added to the specified channel.")
}

func (h *JSONHandler) RemoveMember(w http.ResponseWriter, r *http.Request, caller models.Profile) {
	channelID, ok := pathID(w, r, "channelID")
	if !ok {
		return
	}
	var req MemberRequest
	if err := api.DecodeAndValidate(r, &req); err != nil {
		api.WriteError(w, err)
		return
	}

	if err := h.service.RemoveMember(r.Context(), caller, channelID, req.ID); err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteText(w, http.StatusOK, "User was removed from the specified channel.")
}

func (h *JSONHandler) UpdateMessage(w http.ResponseWriter, r *http.Request, caller models.Profile) {
	messageID, ok := pathID(w, r, "messageID")
	if !ok {
		return
	}
	var req UpdateMessageRequest
	if err := api.DecodeAndValidate(r, &req); err != nil {
		api.WriteError(w, err)
		return
	}

	message, err := h.service.UpdateMessage(r.Context(), caller, messageID, req)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, message)
}

func (h *JSONHandler) DeleteMessage(w http.ResponseWriter, r *http.Request, caller models.Profile) {
	messageID, ok := pathID(w, r, "messageID")
	if !ok {
		return
	}

	if err := h.service.DeleteMessage(r.Context(), caller, messageID); err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteText(w, http.StatusOK, "The message was deleted successfully.")
}

// pathID reads a positive integer path variable, answering 400 when it is
// missing or malformed.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		api.WriteError(w, infrastructure.InvalidArgument(infrastructure.MsgMissingPathParam))
		return 0, false
	}
	return id, true
}

func SetupJSONRoutes(r *mux.Router, h *JSONHandler) {
	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/channels", h.identity.Require(h.GetChannels)).Methods(http.MethodGet)
	v1.HandleFunc("/channels", h.identity.Require(h.CreateChannel)).Methods(http.MethodPost)
	v1.HandleFunc("/channels/{channelID}", h.identity.Require(h.GetMessages)).Methods(http.MethodGet)
	v1.HandleFunc("/channels/{channelID}", h.identity.Require(h.PostMessage)).Methods(http.MethodPost)
	v1.HandleFunc("/channels/{channelID}", h.identity.Require(h.UpdateChannel)).Methods(http.MethodPatch)
	v1.HandleFunc("/channels/{channelID}", h.identity.Require(h.DeleteChannel)).Methods(http.MethodDelete)
	v1.HandleFunc("/channels/{channelID}/members", h.identity.Require(h.AddMember)).Methods(http.MethodPost)
	v1.HandleFunc("/channels/{channelID}/members", h.identity.Require(h.RemoveMember)).Methods(http.MethodDelete)
	v1.HandleFunc("/messages/{messageID}", h.identity.Require(h.UpdateMessage)).Methods(http.MethodPatch)
	v1.HandleFunc("/messages/{messageID}", h.identity.Require(h.DeleteMessage)).Methods(http.MethodDelete)
}
