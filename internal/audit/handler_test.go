package audit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "lettings/pkg/domain"
	"lettings/pkg/requestcontext"
)

func TestHandler_Trail(t *testing.T) {
	store := NewInMemoryStore()
	propertyID := id.PropertyID(uuid.New())
	require.NoError(t, store.Append(context.Background(), Event{Action: ActionListingRegistered, PropertyID: propertyID, To: "DRAFT"}))

	r := chi.NewRouter()
	NewHandler(store, nil).Register(r)
	get := func(actor id.Actor) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/properties/"+propertyID.String()+"/audit", nil)
		req = req.WithContext(requestcontext.WithActor(req.Context(), actor))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("landlord reads the trail", func(t *testing.T) {
		w := get(id.Actor{ID: id.UserID(uuid.New()), Role: id.RoleLandlord})
		require.Equal(t, http.StatusOK, w.Code)
		var resp TrailResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Events, 1)
		assert.Equal(t, ActionListingRegistered, resp.Events[0].Action)
	})

	t.Run("tenants are refused", func(t *testing.T) {
		w := get(id.Actor{ID: id.UserID(uuid.New()), Role: id.RoleTenant})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
