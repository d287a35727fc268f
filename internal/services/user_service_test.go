package services_test

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicehub/internal/domain"
	"servicehub/internal/repos"
	"servicehub/internal/services"
)

func TestImportCSV(t *testing.T) {
	e := newEnv(t)
	in := "\ufeffName,EMAIL,Phone,Role,Approved,Location,Bio,Extra\n" +
		"Ana Lopez,Ana@Example.org,+1 555 0100,provider,true,Austin,Nail artist,x\n" +
		"Existing,client@example.com,,client,true,,,\n" +
		"Repeat,ana@example.org,,client,true,,,\n" +
		"No Email,,,client,true,,,\n" +
		"Bad Email,not-an-email,,client,true,,,\n" +
		"Odd Role,odd@example.org,call me,superuser,0,,,\n"

	res, err := e.userSvc.ImportCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, res.Imported, 2)
	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, 2, res.Invalid)

	ana, err := e.users.ByEmail("ana@example.org")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleProvider, ana.Role)
	assert.True(t, ana.IsApproved)
	assert.Equal(t, "Austin", ana.Location)
	assert.NotEmpty(t, ana.Hash)

	odd, err := e.users.ByEmail("odd@example.org")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleClient, odd.Role, "unknown role falls back to client")
	assert.False(t, odd.IsApproved)
	assert.Empty(t, odd.Phone, "invalid phone dropped")
}

func TestImportCSV_Empty(t *testing.T) {
	e := newEnv(t)
	_, err := e.userSvc.ImportCSV(strings.NewReader(""))
	var fe services.FieldErrors
	assert.ErrorAs(t, err, &fe)
}

func TestExportCSV_RoundTripsThroughImport(t *testing.T) {
	e := newEnv(t)

	var buf bytes.Buffer
	require.NoError(t, e.userSvc.ExportCSV(&buf))
	recs, err := csv.NewReader(bytes.NewReader(buf.Bytes())).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 7)
	assert.Equal(t, services.CSVHeader, recs[0])
	assert.Equal(t, []string{"John Doe", "john@example.com", "+0987654322", "client", "true", "", ""}, recs[1])

	res, err := e.userSvc.ImportCSV(&buf)
	require.NoError(t, err)
	assert.Empty(t, res.Imported)
	assert.Equal(t, 6, res.Skipped)
}

func TestSampleCSV_Imports(t *testing.T) {
	e := newEnv(t)
	res, err := e.userSvc.ImportCSV(strings.NewReader(services.SampleCSV()))
	require.NoError(t, err)
	assert.Len(t, res.Imported, 3)
}

func TestUserCreate_Validation(t *testing.T) {
	e := newEnv(t)

	_, err := e.userSvc.Create(services.UserForm{Email: "bad", Password: "123", Phone: "abc"})
	var fe services.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "full_name")
	assert.Contains(t, fe, "email")
	assert.Contains(t, fe, "password")
	assert.Contains(t, fe, "role")
	assert.Contains(t, fe, "phone")

	_, err = e.userSvc.Create(services.UserForm{FullName: "Dup", Email: "CLIENT@example.com", Password: "secret1", Role: "client"})
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "email")

	u, err := e.userSvc.Create(services.UserForm{FullName: "  New Admin ", Email: "Boss@Example.org", Password: "secret1", Role: "admin", IsApproved: true})
	require.NoError(t, err)
	assert.Equal(t, "New Admin", u.FullName)
	assert.Equal(t, "boss@example.org", u.Email)
}

func TestUserLifecycle(t *testing.T) {
	e := newEnv(t)

	p, err := e.auth.SignUp("new.provider@example.org", "secret1", "New Provider", domain.RoleProvider)
	require.NoError(t, err)
	stats, err := e.userSvc.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.PendingProviders)

	require.NoError(t, e.userSvc.Approve(p.ID))
	got, err := e.userSvc.Get(p.ID)
	require.NoError(t, err)
	assert.True(t, got.IsApproved)
	assert.Contains(t, e.titles(t, p.ID), "Account Approved")

	require.NoError(t, e.userSvc.Suspend(p.ID))
	got, err = e.userSvc.Get(p.ID)
	require.NoError(t, err)
	assert.False(t, got.IsApproved)

	assert.ErrorIs(t, e.userSvc.Delete("admin-1", "admin-1"), services.ErrForbidden)
	assert.ErrorIs(t, e.userSvc.Approve("missing"), services.ErrNotFound)
}

func TestUserDelete_KeepsHistory(t *testing.T) {
	e := newEnv(t)

	require.NoError(t, e.userSvc.Delete("admin-1", "provider-1"))
	_, err := e.userSvc.Get("provider-1")
	assert.ErrorIs(t, err, services.ErrNotFound)

	apt, err := e.apts.GetView("apt-1")
	require.NoError(t, err)
	assert.Empty(t, apt.ProviderName)

	rows, err := e.catalog.Search(repos.ServiceFilter{ProviderID: "provider-1"})
	require.NoError(t, err)
	for _, r := range rows {
		assert.False(t, r.IsActive, r.ID)
	}

	require.NoError(t, e.userSvc.Delete("admin-1", "client-1"))
	favs, _, err := e.favs.List("client-1", "")
	require.NoError(t, err)
	assert.Empty(t, favs)
}

func TestUserList_Filters(t *testing.T) {
	e := newEnv(t)

	providers, err := e.userSvc.List(repos.UserFilter{Role: domain.RoleProvider})
	require.NoError(t, err)
	assert.Len(t, providers, 3)

	mike, err := e.userSvc.List(repos.UserFilter{Q: "MIKE"})
	require.NoError(t, err)
	require.Len(t, mike, 1)
	assert.Equal(t, "provider-2", mike[0].ID)

	pending, err := e.userSvc.List(repos.UserFilter{Status: "pending"})
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestGeneratePassword(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		pw, err := services.GeneratePassword()
		require.NoError(t, err)
		assert.Len(t, pw, 12)
		for _, r := range pw {
			assert.True(t, strings.ContainsRune("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789!@#$%^&*", r))
		}
		seen[pw] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestUpdateProfile(t *testing.T) {
	e := newEnv(t)
	u := e.user(t, "client-1")

	_, err := e.userSvc.UpdateProfile(u, services.ProfileForm{FullName: "Jane", Email: "john@example.com"})
	var fe services.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "email")

	next, err := e.userSvc.UpdateProfile(u, services.ProfileForm{
		FullName: "Jane Q. Client", Email: "Jane@Example.org", Phone: "+1 (555) 010-0000", Website: "https://jane.example.org",
	})
	require.NoError(t, err)
	assert.Equal(t, "jane@example.org", next.Email)

	stored := e.user(t, "client-1")
	assert.Equal(t, "Jane Q. Client", stored.FullName)
	assert.Equal(t, "https://jane.example.org", stored.Website)
	assert.Empty(t, stored.Bio)
}
