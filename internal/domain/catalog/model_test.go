package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"aquaplant/internal/core/apperror"
)

func TestFamilyFromName(t *testing.T) {
	tests := []struct {
		name string
		want Family
	}{
		{"Aqua 250ml (30 pcs)", Family250ml},
		{"Aqua 500ml", Family500ml},
		{"Aqua 1000ml", Family1000ml},
		{"Aqua 1L", Family1000ml},
		{"Aqua 1Ltr Premium", Family1000ml},
		{"Aqua 20 Litre Jar", FamilyNone},
		{"", FamilyNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FamilyFromName(tt.name))
		})
	}
}

func TestProduct_ResolveFamily_PrefersTag(t *testing.T) {
	p := Product{Name: "Aqua 500ml", Family: Family1000ml}
	assert.Equal(t, Family1000ml, p.ResolveFamily())

	p.Family = FamilyNone
	assert.Equal(t, Family500ml, p.ResolveFamily())
}

func TestProduct_Validate(t *testing.T) {
	ctx := context.Background()

	ok := Product{SN: "P-500", Name: "Aqua 500ml", Family: Family500ml}
	assert.NoError(t, ok.Validate(ctx))

	noSN := Product{Name: "Aqua 500ml"}
	err := noSN.Validate(ctx)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	badFamily := Product{SN: "P-1", Name: "Jar", Family: "20L"}
	appErr, isApp := apperror.AsAppError(badFamily.Validate(ctx))
	assert.True(t, isApp)
	assert.Equal(t, "family", appErr.Details["field"])
}
