package admin

import (
	"context"
	"testing"
	"time"

	accountRepo "lawdesk/database/repository/account"
	bookingRepo "lawdesk/database/repository/booking"
	lawyerRepo "lawdesk/database/repository/lawyer"
	"lawdesk/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memLawyers map[string]models.Lawyer

func (m memLawyers) List(ctx context.Context, f lawyerRepo.ListFilter) ([]models.Lawyer, error) {
	out := []models.Lawyer{}
	for _, l := range m {
		out = append(out, l)
	}
	return out, nil
}

func (m memLawyers) GetByLawyerID(ctx context.Context, id string) (*models.Lawyer, error) {
	l, ok := m[id]
	if !ok {
		return nil, lawyerRepo.ErrNotFound
	}
	return &l, nil
}

func (m memLawyers) Update(ctx context.Context, id string, u lawyerRepo.LawyerUpdate) (*models.Lawyer, error) {
	l, ok := m[id]
	if !ok {
		return nil, lawyerRepo.ErrNotFound
	}
	if u.Name != nil {
		l.Name = *u.Name
	}
	if u.ConsultationFee != nil {
		l.ConsultationFee = *u.ConsultationFee
	}
	if u.Status != nil {
		l.Status = *u.Status
	}
	m[id] = l
	return &l, nil
}

func (m memLawyers) SetVerified(ctx context.Context, id string, verified bool) (*models.Lawyer, error) {
	l, ok := m[id]
	if !ok {
		return nil, lawyerRepo.ErrNotFound
	}
	l.Verified = verified
	m[id] = l
	return &l, nil
}

func (m memLawyers) Delete(ctx context.Context, id string) error {
	if _, ok := m[id]; !ok {
		return lawyerRepo.ErrNotFound
	}
	delete(m, id)
	return nil
}

type accountList struct {
	accountRepo.AccountRepository
	all []models.Account
}

func (a accountList) List(ctx context.Context, role string) ([]models.Account, error) {
	out := []models.Account{}
	for _, acc := range a.all {
		if role == "" || acc.Role == role {
			out = append(out, acc)
		}
	}
	return out, nil
}

type lawyerBookings struct {
	bookingRepo.BookingRepository
	all []models.Booking
}

func (b lawyerBookings) ListByLawyer(ctx context.Context, id string) ([]models.Booking, error) {
	out := []models.Booking{}
	for _, bk := range b.all {
		if bk.LawyerID == id {
			out = append(out, bk)
		}
	}
	return out, nil
}

func newService() (*DefaultAdminService, memLawyers) {
	lawyers := memLawyers{
		"Lawyer046": {LawyerID: "Lawyer046", Name: "Adv. Rao", ConsultationFee: decimal.RequireFromString("500"), Status: "online"},
	}
	accounts := accountList{all: []models.Account{
		{ID: "u1", Role: models.RoleClient},
		{ID: "acc-l", Role: models.RoleLawyer, LawyerID: "Lawyer046"},
		{ID: "root", Role: models.RoleAdmin},
	}}
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	bookings := lawyerBookings{all: []models.Booking{
		{ID: "b1", ClientID: "u1", LawyerID: "Lawyer046", Mode: models.ModeVideo, Amount: decimal.RequireFromString("499.5"),
			AmountPaise: 49950, Currency: "INR", Status: models.StatusEnded, GatewayOrderID: "order_1",
			GatewayPaymentID: "pay_1", Verified: true, CreatedAt: created},
		{ID: "b2", ClientID: "u2", LawyerID: "Lawyer046", Mode: models.ModeChat, Amount: decimal.RequireFromString("300"),
			AmountPaise: 30000, Currency: "INR", Status: models.StatusRequested, GatewayOrderID: "order_2", CreatedAt: created},
		{ID: "b3", ClientID: "u1", LawyerID: "Lawyer777", Verified: true},
	}}
	return NewDefaultAdminService(accounts, lawyers, bookings, nil), lawyers
}

func TestListUsersByRole(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	all, err := svc.ListUsers(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	lawyers, err := svc.ListUsers(ctx, models.RoleLawyer)
	require.NoError(t, err)
	require.Len(t, lawyers, 1)
	assert.Equal(t, "acc-l", lawyers[0].ID)

	_, err = svc.ListUsers(ctx, "superuser")
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestVerifyAndDeleteLawyer(t *testing.T) {
	svc, store := newService()
	ctx := context.Background()

	l, err := svc.VerifyLawyer(ctx, "Lawyer046")
	require.NoError(t, err)
	assert.True(t, l.Verified)
	assert.True(t, store["Lawyer046"].Verified)

	_, err = svc.VerifyLawyer(ctx, "Nobody")
	assert.ErrorIs(t, err, lawyerRepo.ErrNotFound)

	require.NoError(t, svc.DeleteLawyer(ctx, "Lawyer046"))
	assert.NotContains(t, store, "Lawyer046")
	assert.ErrorIs(t, svc.DeleteLawyer(ctx, "Lawyer046"), lawyerRepo.ErrNotFound)
}

func TestUpdateLawyerValidation(t *testing.T) {
	svc, store := newService()
	ctx := context.Background()
	str := func(s string) *string { return &s }
	fee := func(s string) *decimal.Decimal { d := decimal.RequireFromString(s); return &d }
	years := -1

	cases := []struct {
		name string
		u    lawyerRepo.LawyerUpdate
	}{
		{"empty", lawyerRepo.LawyerUpdate{}},
		{"blank name", lawyerRepo.LawyerUpdate{Name: str("  ")}},
		{"negative experience", lawyerRepo.LawyerUpdate{Experience: &years}},
		{"zero fee", lawyerRepo.LawyerUpdate{ConsultationFee: fee("0")}},
		{"unknown status", lawyerRepo.LawyerUpdate{Status: str("sleeping")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.UpdateLawyer(ctx, "Lawyer046", tc.u)
			assert.ErrorIs(t, err, ErrInvalidUpdate)
		})
	}

	l, err := svc.UpdateLawyer(ctx, "Lawyer046", lawyerRepo.LawyerUpdate{Name: str(" Adv. K. Rao "), ConsultationFee: fee("750.00"), Status: str("offline")})
	require.NoError(t, err)
	assert.Equal(t, "Adv. K. Rao", l.Name)
	assert.True(t, store["Lawyer046"].ConsultationFee.Equal(decimal.RequireFromString("750")))
	assert.Equal(t, "offline", store["Lawyer046"].Status)
}

func TestLawyerTransactions(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	admin := Actor{AccountID: "root", Role: models.RoleAdmin}
	self := Actor{AccountID: "acc-l", Role: models.RoleLawyer, LawyerID: "Lawyer046"}

	list, err := svc.LawyerTransactions(ctx, admin, "Lawyer046")
	require.NoError(t, err)
	require.Len(t, list, 2)

	paid := list[0]
	assert.Equal(t, "b1", paid.BookingID)
	assert.Equal(t, "pay_1", paid.PaymentID)
	assert.Equal(t, "order_1", paid.OrderID)
	assert.Equal(t, "499.50", paid.Amount)
	assert.Equal(t, int64(49950), paid.AmountPaise)
	assert.Equal(t, models.PaymentPaid, paid.PaymentStatus)
	assert.Equal(t, models.StatusEnded, paid.Status)
	assert.Equal(t, models.PaymentPending, list[1].PaymentStatus)
	assert.Empty(t, list[1].PaymentID)

	own, err := svc.LawyerTransactions(ctx, self, "Lawyer046")
	require.NoError(t, err)
	assert.Len(t, own, 2)

	_, err = svc.LawyerTransactions(ctx, self, "Lawyer777")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.LawyerTransactions(ctx, Actor{AccountID: "u1", Role: models.RoleClient}, "Lawyer046")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.LawyerTransactions(ctx, admin, "Nobody")
	assert.ErrorIs(t, err, lawyerRepo.ErrNotFound)
}
