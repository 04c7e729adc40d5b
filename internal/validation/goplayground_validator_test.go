package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type planRequest struct {
	Market string `json:"market" validate:"required"`
	Dealer string `json:"dealer" validate:"required"`
}

func TestValidateStruct(t *testing.T) {
	v := NewPlaygroundValidator()

	t.Run("valid", func(t *testing.T) {
		errs := v.ValidateStruct(planRequest{Market: "coimbatore", Dealer: "saleem brothers"})
		assert.Nil(t, errs)
	})

	t.Run("missing fields use json names", func(t *testing.T) {
		errs := v.ValidateStruct(planRequest{})
		assert.Equal(t, "market is required", errs["market"])
		assert.Equal(t, "dealer is required", errs["dealer"])
	})

	t.Run("partial", func(t *testing.T) {
		errs := v.ValidateStruct(planRequest{Market: "coimbatore"})
		assert.Len(t, errs, 1)
		assert.Contains(t, errs, "dealer")
	})
}
