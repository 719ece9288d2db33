package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFundraiserDerivedFields(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		raised  int64
		target  int64
		endDate time.Time
		status  FundraiserStatus
		pct     float64
		days    int
	}{
		{"fresh", 0, 1000, now.Add(30 * 24 * time.Hour), StatusActive, 0, 30},
		{"partly funded", 350, 1000, now.Add(36 * time.Hour), StatusActive, 35, 2},
		{"funded", 1000, 1000, now.Add(time.Hour), StatusFunded, 100, 1},
		{"over funded", 1500, 1000, now.Add(time.Hour), StatusFunded, 150, 1},
		{"ended beats funded", 1500, 1000, now, StatusEnded, 150, 0},
		{"ended", 10, 3, now.Add(-time.Hour), StatusEnded, 333.33, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &Fundraiser{RaisedAmount: tt.raised, TargetAmount: tt.target, EndDate: tt.endDate}
			assert.Equal(t, tt.status, f.Status(now))
			assert.InDelta(t, tt.pct, f.PercentageReached(), 0.001)
			assert.Equal(t, tt.days, f.DaysRemaining(now))
		})
	}
}

func TestPercentageReachedZeroTarget(t *testing.T) {
	f := &Fundraiser{RaisedAmount: 10}
	assert.Zero(t, f.PercentageReached())
}

func TestPublicUserHasNoHash(t *testing.T) {
	u := &User{ID: "u1", Name: "Ann", Email: "ann@x.com", Mobile: "9990001111", PasswordHash: "secret"}
	p := u.Public()
	assert.Equal(t, "u1", p.ID)
	assert.Equal(t, "ann@x.com", p.Email)
}

func TestValidationErrorMessageIsSorted(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"title": "Title is required", "amount": "Amount is required"}}
	assert.Equal(t, "validation failed: amount: Amount is required; title: Title is required", err.Error())

	got, ok := AsValidation(err)
	assert.True(t, ok)
	assert.Same(t, err, got)
}
