package environment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/storefront/pkg/environment"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want environment.Environment
	}{
		{raw: "production", want: environment.Production},
		{raw: "PROD", want: environment.Production},
		{raw: " stage ", want: environment.Staging},
		{raw: "staging", want: environment.Staging},
		{raw: "dev", want: environment.Development},
		{raw: "", want: environment.Development},
		{raw: "qa", want: environment.Development},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, environment.Parse(tt.raw))
		})
	}
}
