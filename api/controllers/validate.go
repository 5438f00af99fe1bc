package controllers

import (
	"net/http"

	"github.com/tubeboost/storefront-backend/api/responses"
	"github.com/tubeboost/storefront-backend/api/validators"
	"github.com/tubeboost/storefront-backend/pkg/logger"

	"github.com/tubeboost/storefront-backend/internal/linkcheck"
)

type validateURLRequest struct {
	URL  string `json:"url" validate:"required"`
	Kind string `json:"kind" validate:"omitempty,oneof=video channel"`
}

type validateURLResponse struct {
	Valid      bool   `json:"valid"`
	Kind       string `json:"kind,omitempty"`
	ResourceID string `json:"resource_id,omitempty"`
	CleanURL   string `json:"clean_url,omitempty"`
	Error      string `json:"error,omitempty"`
}

// ValidateURL runs the offline target-URL check. Invalid URLs are a normal
// 200 response with valid=false so the UI can render the field error inline.
func ValidateURL(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload validateURLRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result := linkcheck.Validate(payload.URL, linkcheck.Kind(payload.Kind))
		responses.WriteSuccess(w, validateURLResponse{
			Valid:      result.Valid,
			Kind:       string(result.Kind),
			ResourceID: result.ResourceID,
			CleanURL:   result.CleanURL,
			Error:      result.Err,
		})
	}
}
