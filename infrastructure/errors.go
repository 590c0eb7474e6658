package infrastructure

import (
	"errors"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrChannelNotFound = errors.New("channel not found")
	ErrMessageNotFound = errors.New("message not found")
	ErrMemberExists    = errors.New("member already exists")
	ErrMeetupNotFound  = errors.New("meetup not found")
	ErrAlreadyJoined   = errors.New("meetup already joined")
	ErrInvalidInput    = errors.New("invalid input")
	ErrMissingIdentity = errors.New("missing identity claim")
	ErrInvalidIdentity = errors.New("invalid identity claim")
)

// Client-facing texts. They never carry the underlying error.
const (
	MsgUnauthorized       = "Unauthorized"
	MsgMissingPathParam   = "Error: Missing path parameter."
	MsgNotChannelMember   = "Forbidden: User is not a member of the specified channel."
	MsgNotChannelCreator  = "Forbidden: User is not the creator of the specified channel."
	MsgNotMessageCreator  = "Forbidden: User is not the creator of the specified message."
	MsgCannotGetChannel   = "Server Error: Cannot get specified channel from database."
	MsgCannotGetMessage   = "Server Error: Cannot get specified message from database."
	MsgCannotPublishEvent = "Error sending event message to RabbitMQ"

	MsgCannotConnect       = "Server Error: Cannot connect to database."
	MsgCannotGetChannels   = "Server Error: Cannot get user channels from database."
	MsgCannotGetProfiles   = "Server Error: Cannot get profile information."
	MsgCannotCreateChannel = "Server Error: Cannot insert into database."
	MsgCannotUpdateChannel = "Server Error: Cannot update channel name and/or description in database."
	MsgCannotDeleteChannel = "Server Error: Cannot delete channel or channel messages from database."
	MsgCannotAddMember     = "Server Error: Cannot add member to channel in database."
	MsgCannotRemoveMember  = "Server Error: Cannot remove member from database."
	MsgCannotGetMessages   = "Server Error: Cannot get message from database."
	MsgCannotCreateMessage = "Server Error: Cannot insert message into database."
	MsgCannotUpdateMessage = "Server Error: Cannot update message in database."
	MsgCannotDeleteMessage = "Server Error: Cannot delete message from database."
	MsgEmptyChannelUpdate  = "Error: Please provide a new channel name or description in the request body."
	MsgInvalidCursor       = "Error: Query parameter before must be a message id."
	MsgMemberExists        = "Conflict: User is already a member of the specified channel."

	MsgCannotGetMeetups       = "Server Error: Cannot select events in database."
	MsgCannotGetJoinedMeetups = "Server Error: Cannot select joined events."
	MsgCannotCreateMeetup     = "Server Error: Cannot create new event or channel."
	MsgCannotJoinMeetup       = "Server Error: Cannot join the specified event."
	MsgMeetupNotFound         = "Error: The specified event does not exist."
	MsgAlreadyJoined          = "Conflict: User already joined the specified event."
)

// The constructors below build the status errors returned to the transport
// layer.
func Unauthenticated() error {
	return status.Error(codes.Unauthenticated, MsgUnauthorized)
}

func InvalidArgument(msg string) error {
	return status.Error(codes.InvalidArgument, msg)
}

func Forbidden(msg string) error {
	return status.Error(codes.PermissionDenied, msg)
}

func ServerError(msg string) error {
	return status.Error(codes.Internal, msg)
}

func Conflict(msg string) error {
	return status.Error(codes.AlreadyExists, msg)
}

func NotFound(msg string) error {
	return status.Error(codes.NotFound, msg)
}

// HTTPStatus maps an error produced by this service to its HTTP status code.
// Errors that do not carry a status are treated as server errors.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	st, ok := statusOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch st.Code() {
	case codes.OK:
		return http.StatusOK
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.NotFound:
		return http.StatusNotFound
	case codes.AlreadyExists:
		return http.StatusConflict
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// ClientMessage returns the text safe to send back to a caller.
func ClientMessage(err error) string {
	if st, ok := statusOf(err); ok {
		return st.Message()
	}
	return "Server Error"
}

// statusOf finds the status error wrapped in err, keeping its own message
// rather than the wrapped error text.
func statusOf(err error) (*status.Status, bool) {
	var se interface{ GRPCStatus() *status.Status }
	if !errors.As(err, &se) {
		return nil, false
	}
	return se.GRPCStatus(), true
}
