package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"messaging/infrastructure"
)

const maxBodyBytes = 1 << 20

var validate = validator.New()

// DecodeAndValidate reads a JSON body into dst and checks its validate tags.
// Any failure is reported as InvalidArgument.
func DecodeAndValidate(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: %w", infrastructure.ErrInvalidInput, infrastructure.InvalidArgument("Error: Request body is empty."))
		}
		return fmt.Errorf("%w: %w", infrastructure.ErrInvalidInput, infrastructure.InvalidArgument("Error: Request body is not valid JSON."))
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %w", infrastructure.ErrInvalidInput,
				infrastructure.InvalidArgument(fmt.Sprintf("Error: Invalid value for field %q.", verrs[0].Field())))
		}
		return fmt.Errorf("%w: %w", infrastructure.ErrInvalidInput, infrastructure.InvalidArgument("Error: Invalid request body."))
	}
	return nil
}
