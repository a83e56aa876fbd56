package validator_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storefront/pkg/validator"
)

func TestApply(t *testing.T) {
	t.Parallel()

	t.Run("all rules pass", func(t *testing.T) {
		t.Parallel()
		err := validator.Apply(
			validator.Required("email", "a@x.com"),
			validator.Email("email", "a@x.com"),
			validator.MinLen("password", "secret123", 6),
		)
		assert.NoError(t, err)
	})

	t.Run("collects failures per field", func(t *testing.T) {
		t.Parallel()
		err := validator.Apply(
			validator.Required("email", "  "),
			validator.Email("email", "  "),
			validator.MinLen("password", "abc", 6),
		)
		require.Error(t, err)
		assert.True(t, errors.Is(err, validator.ErrValidationFailed))

		ve := validator.Extract(err)
		require.Len(t, ve, 3)
		assert.True(t, ve.Has("email"))
		assert.True(t, ve.Has("password"))
		assert.False(t, ve.Has("zip"))
		assert.Equal(t, []string{"must be at least 6 characters long"}, ve.Get("password"))
		assert.Contains(t, err.Error(), "password: must be at least 6 characters long")
	})

	t.Run("extract through wrapping", func(t *testing.T) {
		t.Parallel()
		err := fmt.Errorf("register: %w", validator.Apply(validator.Required("first_name", "")))
		assert.True(t, validator.Extract(err).Has("first_name"))
		assert.Nil(t, validator.Extract(errors.New("other")))
	})
}

func TestEmail(t *testing.T) {
	t.Parallel()

	valid := []string{"a@x.com", "first.last+tag@shop.example.org"}
	invalid := []string{"", "plain", "a@x", "Name <a@x.com>", "@x.com"}

	for _, v := range valid {
		assert.True(t, validator.Email("email", v).Check(), v)
	}
	for _, v := range invalid {
		assert.False(t, validator.Email("email", v).Check(), v)
	}
}

func TestNumericRules(t *testing.T) {
	t.Parallel()

	assert.True(t, validator.Min("quantity", 1, 1).Check())
	assert.False(t, validator.Min("quantity", 0, 1).Check())
	assert.True(t, validator.Positive("total", 0.01).Check())
	assert.False(t, validator.Positive("total", 0.0).Check())
	assert.False(t, validator.Positive[int64]("item_id", -3).Check())
}

func TestOneOfAndZip(t *testing.T) {
	t.Parallel()

	assert.True(t, validator.OneOf("payment_method", "paypal", "credit_card", "paypal").Check())
	assert.False(t, validator.OneOf("payment_method", "cash", "credit_card", "paypal").Check())

	assert.True(t, validator.ZipCode("zip", "94103").Check())
	assert.True(t, validator.ZipCode("zip", "94103-1234").Check())
	assert.True(t, validator.ZipCode("zip", "SW1A 1AA").Check())
	assert.False(t, validator.ZipCode("zip", "").Check())
	assert.False(t, validator.ZipCode("zip", "!!!").Check())
	assert.True(t, validator.MaxLen("state", "CA", 2).Check())
}
