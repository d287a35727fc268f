package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicehub/internal/domain"
	"servicehub/internal/services"
)

func TestSignUp(t *testing.T) {
	e := newEnv(t)

	c, err := e.auth.SignUp(" Sam@Example.org ", "secret1", "Sam", domain.RoleClient)
	require.NoError(t, err)
	assert.Equal(t, "sam@example.org", c.Email)
	assert.True(t, c.IsApproved, "clients are approved on sign up")

	p, err := e.auth.SignUp("pro@example.org", "secret1", "Pro", domain.RoleProvider)
	require.NoError(t, err)
	assert.False(t, p.IsApproved)

	_, err = e.auth.SignUp("SAM@example.org", "secret1", "Sam Again", domain.RoleClient)
	assert.ErrorIs(t, err, services.ErrUserExists)

	_, err = e.auth.SignUp("root@example.org", "secret1", "Root", domain.RoleAdmin)
	var fe services.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "role")
}

func TestLogin(t *testing.T) {
	e := newEnv(t)

	_, err := e.auth.Login("sid-1", "client@example.com", "wrong")
	assert.ErrorIs(t, err, services.ErrBadCreds)
	_, err = e.auth.Login("sid-1", "nobody@example.com", "client123")
	assert.ErrorIs(t, err, services.ErrBadCreds)

	u, err := e.auth.Login("sid-1", "CLIENT@example.com", "client123")
	require.NoError(t, err)
	assert.Equal(t, "client-1", u.ID)

	cur, err := e.auth.CurrentUser("sid-1")
	require.NoError(t, err)
	assert.Equal(t, "client-1", cur.ID)

	require.NoError(t, e.auth.Logout("sid-1"))
	_, err = e.auth.CurrentUser("sid-1")
	assert.Error(t, err)
}

func TestLogin_PendingProvider(t *testing.T) {
	e := newEnv(t)
	_, err := e.auth.SignUp("wait@example.org", "secret1", "Waiting", domain.RoleProvider)
	require.NoError(t, err)

	u, err := e.auth.Login("sid-2", "wait@example.org", "secret1")
	assert.ErrorIs(t, err, services.ErrNotApproved)
	require.NotNil(t, u)
	assert.Equal(t, "Waiting", u.FullName)

	_, err = e.auth.CurrentUser("sid-2")
	assert.Error(t, err, "no session for unapproved accounts")
}
