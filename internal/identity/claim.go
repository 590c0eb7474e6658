// Package identity reads the caller identity that the upstream gateway
// attaches to every request. The claim is trusted as-is and never re-verified.
package identity

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"messaging/infrastructure"
	"messaging/internal/api"
	"messaging/internal/models"
)

const DefaultHeader = "X-User"

var validate = validator.New()

// HandlerFunc is an http handler that receives the resolved caller explicitly.
type HandlerFunc func(w http.ResponseWriter, r *http.Request, caller models.Profile)

type Reader struct {
	header string
	log    *slog.Logger
}

func NewReader(header string, log *slog.Logger) *Reader {
	if header == "" {
		header = DefaultHeader
	}
	return &Reader{header: header, log: log}
}

// FromRequest parses the identity claim carried by r. A missing or malformed
// claim yields an Unauthenticated status error.
func (rd *Reader) FromRequest(r *http.Request) (models.Profile, error) {
	raw := r.Header.Get(rd.header)
	if raw == "" {
		return models.Profile{}, fmt.Errorf("%w: %w", infrastructure.ErrMissingIdentity, infrastructure.Unauthenticated())
	}
	return Parse(raw)
}

// Parse decodes a JSON identity claim.
func Parse(raw string) (models.Profile, error) {
	var caller models.Profile
	if err := json.Unmarshal([]byte(raw), &caller); err != nil {
		return models.Profile{}, fmt.Errorf("%w: %w", infrastructure.ErrInvalidIdentity, infrastructure.Unauthenticated())
	}
	if err := validate.Struct(caller); err != nil {
		return models.Profile{}, fmt.Errorf("%w: %w", infrastructure.ErrInvalidIdentity, infrastructure.Unauthenticated())
	}
	return caller, nil
}

// Require rejects requests without a usable claim and hands the caller to next.
func (rd *Reader) Require(next HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := rd.FromRequest(r)
		if err != nil {
			rd.log.Debug("Rejected request without identity", "path", r.URL.Path, "error", err)
			api.WriteError(w, err)
			return
		}
		next(w, r, caller)
	}
}
