package httputil

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	id "lettings/pkg/domain"
	dErrors "lettings/pkg/domain-errors"
)

func PropertyIDParam(r *http.Request) (id.PropertyID, error) {
	return id.ParsePropertyID(chi.URLParam(r, "propertyID"))
}

func ApplicationIDParam(r *http.Request) (id.ApplicationID, error) {
	return id.ParseApplicationID(chi.URLParam(r, "applicationID"))
}

func BookingIDParam(r *http.Request) (id.BookingID, error) {
	return id.ParseBookingID(chi.URLParam(r, "bookingID"))
}

// IntParam parses a non-negative integer path parameter.
func IntParam(r *http.Request, name string) (int, error) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || n < 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, name+" must be a non-negative integer")
	}
	return n, nil
}
