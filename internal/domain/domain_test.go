package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition(t *testing.T) {
	t.Run("Legal moves", func(t *testing.T) {
		for _, tc := range []struct{ from, to Status }{
			{StatusPending, StatusApproved},
			{StatusPending, StatusRejected},
			{StatusApproved, StatusRedeemed},
		} {
			got, err := Transition(tc.from, tc.to)
			require.NoError(t, err, "%s -> %s", tc.from, tc.to)
			assert.Equal(t, tc.to, got)
		}
	})

	t.Run("Illegal moves", func(t *testing.T) {
		for _, tc := range []struct{ from, to Status }{
			{StatusApproved, StatusRejected},
			{StatusRejected, StatusApproved},
			{StatusRedeemed, StatusApproved},
			{StatusPending, StatusRedeemed},
			{StatusPending, StatusPending},
		} {
			_, err := Transition(tc.from, tc.to)
			assert.True(t, errors.Is(err, ErrInvalidTransition), "%s -> %s", tc.from, tc.to)
		}
	})

	t.Run("Unknown status", func(t *testing.T) {
		_, err := Transition(Status("aprobada"), StatusApproved)
		assert.ErrorIs(t, err, ErrUnknownStatus)

		_, err = Transition(StatusPending, Status(""))
		assert.ErrorIs(t, err, ErrUnknownStatus)
	})

	t.Run("Terminal statuses", func(t *testing.T) {
		assert.True(t, StatusRejected.Terminal())
		assert.True(t, StatusRedeemed.Terminal())
		assert.False(t, StatusPending.Terminal())
	})
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("approved")
	assert.NoError(t, err)
	assert.Equal(t, StatusApproved, s)

	_, err = ParseStatus("APPROVED")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestAccessRequest_Wristband(t *testing.T) {
	for _, code := range []string{"", "   ", WristbandUnassigned} {
		req := &AccessRequest{WristbandCode: code}
		assert.False(t, req.HasWristband())
		assert.Equal(t, WristbandUnassignedLabel, req.DisplayWristband())
	}

	req := &AccessRequest{WristbandCode: " PUL-0042 "}
	assert.True(t, req.HasWristband())
	assert.Equal(t, "PUL-0042", req.DisplayWristband())
}

func TestAccessRequest_FullName(t *testing.T) {
	req := &AccessRequest{FirstName: "Ana", PaternalSurname: "López", MaternalSurname: ""}
	assert.Equal(t, "Ana López", req.FullName())

	req.MaternalSurname = "Ruiz"
	assert.Equal(t, "Ana López Ruiz", req.FullName())
}

func TestReferenceNames_NamesOrFallback(t *testing.T) {
	n := ReferenceNames{Function: "Prensa"}.NamesOrFallback()
	assert.Equal(t, NotSpecified, n.Area)
	assert.Equal(t, "Prensa", n.Function)
	assert.Equal(t, NotSpecified, n.Company)
}

func TestSession(t *testing.T) {
	req := &AccessRequest{AreaID: "a1", CompanyID: "c1"}

	t.Run("Scopes", func(t *testing.T) {
		assert.True(t, (&Session{Role: RoleSuperAdmin}).CanReview(req))
		assert.True(t, (&Session{Role: RoleAreaAdmin, AreaID: "a1"}).CanReview(req))
		assert.False(t, (&Session{Role: RoleAreaAdmin, AreaID: "a2"}).CanReview(req))
		assert.False(t, (&Session{Role: RoleAreaAdmin}).CanReview(&AccessRequest{}))
		assert.True(t, (&Session{Role: RoleCompanyAdmin, CompanyID: "c1"}).CanReview(req))
		assert.False(t, (&Session{Role: RoleStaff}).CanReview(req))
		assert.True(t, (&Session{Role: RoleStaff}).CanRedeem())
		assert.False(t, (&Session{Role: RoleAreaAdmin}).CanRedeem())
	})

	t.Run("Context round trip", func(t *testing.T) {
		_, ok := SessionFrom(context.Background())
		assert.False(t, ok)

		ctx := WithSession(context.Background(), &Session{UID: "u1"})
		s, ok := SessionFrom(ctx)
		require.True(t, ok)
		assert.Equal(t, "u1", s.UID)
	})
}

func TestChangeEvent_Statuses(t *testing.T) {
	ev := ChangeEvent{Kind: EventCreated, After: &AccessRequest{Status: StatusApproved}}
	assert.Equal(t, Status(""), ev.PreviousStatus())
	assert.Equal(t, StatusApproved, ev.NewStatus())
}
