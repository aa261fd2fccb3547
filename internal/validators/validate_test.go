package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BruksfildServices01/agent-crm/internal/httperr"
)

type sample struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
	Pass  string `validate:"min=6"`
}

func TestStruct(t *testing.T) {
	assert.NoError(t, Struct(sample{Name: "Bob", Pass: "secret"}))

	err := Struct(sample{Pass: "secret"})
	assert.True(t, httperr.IsBusiness(err, httperr.CodeValidationFailed))
	assert.Equal(t, "name is required.", httperr.Message(err))

	err = Struct(sample{Name: "Bob", Email: "nope", Pass: "secret"})
	assert.Equal(t, "email must be a valid email address.", httperr.Message(err))

	err = Struct(sample{Name: "Bob", Pass: "123"})
	assert.Equal(t, "pass must be at least 6 characters.", httperr.Message(err))
}

func TestIsEmail(t *testing.T) {
	assert.True(t, IsEmail("a@b.io"))
	assert.False(t, IsEmail("a@"))
}
