package utils

import (
	"testing"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type membershipForm struct {
	Tier     string `binding:"required,tier"`
	StartsAt string `binding:"required,isodate"`
	Status   string `binding:"omitempty,trxstatus"`
	WashType string `binding:"omitempty,washtype"`
	Role     string `binding:"omitempty,userrole"`
}

func TestRegisterValidators(t *testing.T) {
	require.NoError(t, RegisterValidators())

	ok := membershipForm{Tier: " platinum_vip ", StartsAt: "2025-02-28", Status: "DONE", WashType: "express", Role: "customer"}
	assert.NoError(t, binding.Validator.ValidateStruct(ok))

	tests := []struct {
		name  string
		form  membershipForm
		field string
	}{
		{"unknown tier", membershipForm{Tier: "DIAMOND", StartsAt: "2025-02-28"}, "Tier"},
		{"impossible date", membershipForm{Tier: "GOLD", StartsAt: "2025-02-30"}, "StartsAt"},
		{"lowercase status", membershipForm{Tier: "GOLD", StartsAt: "2025-02-28", Status: "done"}, "Status"},
		{"unknown wash type", membershipForm{Tier: "GOLD", StartsAt: "2025-02-28", WashType: "steam"}, "WashType"},
		{"unknown role", membershipForm{Tier: "GOLD", StartsAt: "2025-02-28", Role: "owner"}, "Role"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := binding.Validator.ValidateStruct(tt.form)
			require.Error(t, err)
			var ve validator.ValidationErrors
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve[0].Field())
		})
	}
}

func TestValidationDetails(t *testing.T) {
	require.NoError(t, RegisterValidators())
	err := binding.Validator.ValidateStruct(membershipForm{})
	assert.Equal(t, "Tier: required; StartsAt: required", ValidationDetails(err))
}

func TestAccessTokenRoundTrip(t *testing.T) {
	ConfigureJWT("utils-secret", time.Minute)
	tok, expiresAt, err := GenerateAccessToken(42, "dewi", "customer")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), expiresAt, 5*time.Second)

	claims, err := ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "dewi", claims.Username)
	assert.Equal(t, tokenIssuer, claims.Issuer)

	_, err = ValidateToken(tok + "x")
	assert.Error(t, err)
}

func TestNewNullString(t *testing.T) {
	assert.Nil(t, NewNullString("   "))
	assert.Equal(t, "a", *NewNullString("a"))
}

func TestParseID(t *testing.T) {
	id, err := ParseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "42", Int64ToStr(id))

	for _, bad := range []string{"", "abc", "0", "-3", "4.5"} {
		_, err := ParseID(bad)
		assert.Error(t, err, bad)
	}
}
