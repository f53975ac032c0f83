package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "cohortpulse/internal/errors"
	"cohortpulse/pkg/contracts/domain"
)

var validate = validator.New()

// respondError maps any error onto the JSON error envelope. Unknown
// errors become opaque 500s.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *apierrors.APIError
	if !errors.As(err, &apiErr) {
		apiErr = apierrors.ErrInternalServer
	}
	render.Render(w, r, apierrors.NewErrorResponse(apiErr))
}

// decodeAndValidate binds a JSON body and runs struct validation.
func decodeAndValidate(r *http.Request, v any) error {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		return apierrors.InvalidRequestWithError(err)
	}
	if err := validate.Struct(v); err != nil {
		return apierrors.InvalidRequestWithError(err)
	}
	return nil
}

// queryDateRange reads optional start/end query parameters in
// YYYY-MM-DD form.
func queryDateRange(r *http.Request) (domain.DateRange, error) {
	var rng domain.DateRange
	if s := r.URL.Query().Get("start"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return rng, apierrors.ErrValidation("start", "expected YYYY-MM-DD")
		}
		rng.Start = t
	}
	if e := r.URL.Query().Get("end"); e != "" {
		t, err := time.Parse("2006-01-02", e)
		if err != nil {
			return rng, apierrors.ErrValidation("end", "expected YYYY-MM-DD")
		}
		rng.End = t
	}
	if !rng.Start.IsZero() && !rng.End.IsZero() && rng.End.Before(rng.Start) {
		return rng, apierrors.ErrValidation("end", "end date precedes start date")
	}
	return rng, nil
}
