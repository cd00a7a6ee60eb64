package validator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type eventForm struct {
	Title string    `validate:"required,min=3"`
	Date  time.Time `validate:"required,future"`
}

type roleForm struct {
	Role string `validate:"required,role"`
}

func TestValidateFuture(t *testing.T) {
	ctx := context.Background()

	t.Run("future date passes", func(t *testing.T) {
		err := Validate(ctx, eventForm{Title: "GopherCon", Date: time.Now().Add(24 * time.Hour)})
		assert.NoError(t, err)
	})

	t.Run("past date fails", func(t *testing.T) {
		err := Validate(ctx, eventForm{Title: "GopherCon", Date: time.Now().Add(-24 * time.Hour)})
		assert.ErrorContains(t, err, "Date must be in the future")
	})

	t.Run("missing title fails first", func(t *testing.T) {
		err := Validate(ctx, eventForm{Date: time.Now().Add(24 * time.Hour)})
		assert.ErrorContains(t, err, ErrFieldRequired)
	})
}

func TestValidateRole(t *testing.T) {
	ctx := context.Background()

	for _, role := range []string{"STUDENT", "ORGANIZER", "ADMIN"} {
		assert.NoError(t, Validate(ctx, roleForm{Role: role}))
	}

	for _, role := range []string{"student", "SUPERUSER", "admin "} {
		err := Validate(ctx, roleForm{Role: role})
		assert.ErrorContains(t, err, "Role must be one of", "role %q should be rejected", role)
	}
}
