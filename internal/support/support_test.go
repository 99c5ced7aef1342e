package support

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/macclone/internal/db"
	"github.com/Simplici0/macclone/internal/migrations"
)

func validForm() ContactForm {
	return ContactForm{
		Name:    "Ada",
		Email:   "ada@example.com",
		Subject: "Order status",
		Message: "Where is my MacClone?",
	}
}

func TestValidate_Accepts(t *testing.T) {
	assert.NoError(t, validForm().Validate())
}

func TestValidate_FieldErrors(t *testing.T) {
	form := ContactForm{Name: "A", Email: "not-an-email", Subject: "Hi", Message: "short"}

	err := form.Validate()

	var fe FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Len(t, fe, 4)
	assert.Contains(t, fe, "name")
	assert.Contains(t, fe, "email")
	assert.Contains(t, fe, "subject")
	assert.Contains(t, fe, "message")
}

func TestValidate_MessageTooLong(t *testing.T) {
	form := validForm()
	form.Message = strings.Repeat("x", 1001)

	var fe FieldErrors
	require.ErrorAs(t, form.Validate(), &fe)
	assert.Equal(t, "Message cannot exceed 1000 characters.", fe["message"])
}

func TestValidate_RejectsDisplayNameAddress(t *testing.T) {
	form := validForm()
	form.Email = "Ada <ada@example.com>"

	require.Error(t, form.Validate())
}

func TestStore_Save(t *testing.T) {
	ctx := context.Background()
	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "support.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, migrations.Up(ctx, database))

	store := NewStore(database)

	form := validForm()
	form.Name = "  Ada  "
	id, err := store.Save(ctx, form)
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err)

	var name string
	require.NoError(t, database.QueryRow(`SELECT name FROM contact_messages WHERE id = ?`, id).Scan(&name))
	assert.Equal(t, "Ada", name)

	_, err = store.Save(ctx, ContactForm{})
	require.Error(t, err)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStore_SaveValidatesTrimmedValues(t *testing.T) {
	ctx := context.Background()
	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "support-trim.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, migrations.Up(ctx, database))

	form := validForm()
	form.Name = " A "
	form.Subject = "  Hi   "

	_, err = NewStore(database).Save(ctx, form)

	var fe FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "name")
	assert.Contains(t, fe, "subject")
}
