package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	id "lettings/pkg/domain"
	"lettings/pkg/requestcontext"
)

const testUserID = "550e8400-e29b-41d4-a716-446655440001"

type MockJWTValidator struct {
	mock.Mock
}

func (m *MockJWTValidator) ValidateToken(tokenString string) (*JWTClaims, error) {
	args := m.Called(tokenString)
	if claims := args.Get(0); claims != nil {
		return claims.(*JWTClaims), args.Error(1)
	}
	return nil, args.Error(1)
}

type captureHandler struct {
	called bool
	ctx    context.Context
}

func (h *captureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.called = true
	h.ctx = r.Context()
	w.WriteHeader(http.StatusOK)
}

type AuthMiddlewareSuite struct {
	suite.Suite
	validator *MockJWTValidator
	next      *captureHandler
	handler   http.Handler
}

func TestAuthMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(AuthMiddlewareSuite))
}

func (s *AuthMiddlewareSuite) SetupTest() {
	s.validator = new(MockJWTValidator)
	s.next = &captureHandler{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.handler = RequireAuth(s.validator, logger)(s.next)
}

func (s *AuthMiddlewareSuite) serve(authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/properties/x/gating", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func (s *AuthMiddlewareSuite) TestValidTokenPopulatesActor() {
	s.validator.On("ValidateToken", "good").Return(&JWTClaims{UserID: testUserID, Role: "landlord"}, nil)

	w := s.serve("Bearer good")

	s.Equal(http.StatusOK, w.Code)
	s.True(s.next.called)
	actor, ok := requestcontext.Actor(s.next.ctx)
	s.True(ok)
	s.Equal(id.RoleLandlord, actor.Role)
	s.Equal(testUserID, actor.ID.String())
}

func (s *AuthMiddlewareSuite) TestMissingHeader() {
	w := s.serve("")
	s.Equal(http.StatusUnauthorized, w.Code)
	s.False(s.next.called)
	s.validator.AssertNotCalled(s.T(), "ValidateToken", mock.Anything)
}

func (s *AuthMiddlewareSuite) TestNonBearerScheme() {
	w := s.serve("Basic abc")
	s.Equal(http.StatusUnauthorized, w.Code)
	s.False(s.next.called)
}

func (s *AuthMiddlewareSuite) TestInvalidToken() {
	s.validator.On("ValidateToken", "bad").Return(nil, errors.New("signature"))

	w := s.serve("Bearer bad")
	s.Equal(http.StatusUnauthorized, w.Code)
	s.False(s.next.called)
}

func (s *AuthMiddlewareSuite) TestUnknownRoleRejected() {
	s.validator.On("ValidateToken", "odd").Return(&JWTClaims{UserID: testUserID, Role: "owner"}, nil)

	w := s.serve("Bearer odd")
	s.Equal(http.StatusUnauthorized, w.Code)
	s.False(s.next.called)
}

func (s *AuthMiddlewareSuite) TestMalformedUserID() {
	s.validator.On("ValidateToken", "odd").Return(&JWTClaims{UserID: "nope", Role: "agent"}, nil)

	w := s.serve("Bearer odd")
	s.Equal(http.StatusUnauthorized, w.Code)
}
