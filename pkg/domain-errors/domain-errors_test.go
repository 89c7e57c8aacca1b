package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

// DomainErrorsSuite covers the error primitives every service boundary relies on:
// wrapped domain errors keep their code, and errors.Is matches by code.
type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestErrorString() {
	s.Run("returns message when present", func() {
		err := &Error{Code: CodeStaleStatus, Message: "application status changed"}
		s.Equal("application status changed", err.Error())
	})

	s.Run("returns code when message is empty", func() {
		err := &Error{Code: CodeAlreadyBooked}
		s.Equal("already_booked", err.Error())
	})
}

func (s *DomainErrorsSuite) TestIsMatchesByCode() {
	s.Run("same code different message", func() {
		s.True(errors.Is(New(CodeNoReservation, "a"), New(CodeNoReservation, "b")))
	})

	s.Run("different codes", func() {
		s.False(errors.Is(New(CodeNoReservation, "a"), New(CodeDuplicateApplication, "a")))
	})

	s.Run("through fmt wrapping", func() {
		err := fmt.Errorf("batch item: %w", New(CodeStaleStatus, "changed"))
		s.True(errors.Is(err, &Error{Code: CodeStaleStatus}))
	})

	s.Run("non-domain target", func() {
		s.False(New(CodeNotFound, "x").(*Error).Is(errors.New("not_found")))
	})
}

func (s *DomainErrorsSuite) TestWrap() {
	s.Run("preserves original domain code", func() {
		wrapped := Wrap(New(CodeInvalidTransition, "no edge"), CodeInternal, "apply decision")
		s.True(HasCode(wrapped, CodeInvalidTransition))
		s.Equal("apply decision", wrapped.Error())
	})

	s.Run("uses provided code for foreign errors", func() {
		root := errors.New("connection reset")
		wrapped := Wrap(root, CodeInternal, "load application")
		s.True(HasCode(wrapped, CodeInternal))
		s.ErrorIs(wrapped, root)
	})
}

func (s *DomainErrorsSuite) TestHasCodeAndCodeOf() {
	s.False(HasCode(nil, CodeNotFound))
	s.False(HasCode(errors.New("plain"), CodeNotFound))
	s.True(HasCode(New(CodeUnauthorized, "landlord only"), CodeUnauthorized))

	s.Equal(CodeAlreadyBooked, CodeOf(Wrap(New(CodeAlreadyBooked, "x"), CodeInternal, "y")))
	s.Equal(CodeInternal, CodeOf(errors.New("plain")))
}
