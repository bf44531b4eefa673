package auth

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/tick/internal/db"
	"github.com/tgienger/tick/internal/live"
	"github.com/tgienger/tick/internal/models"
	"github.com/tgienger/tick/internal/repository"
	"github.com/tgienger/tick/internal/session"
	"github.com/tgienger/tick/internal/worker"
)

type fixture struct {
	svc     *Service
	repo    *repository.Repository
	session *session.Store
}

func setup(t *testing.T) fixture {
	t.Helper()
	database, err := db.OpenMemory(context.Background())
	require.NoError(t, err)
	w := worker.New()
	t.Cleanup(func() {
		w.Close()
		database.Close()
	})

	store, err := session.Open(filepath.Join(t.TempDir(), "session.yaml"))
	require.NoError(t, err)

	repo := repository.New(database, w, live.NewHub())
	return fixture{svc: NewService(repo, store), repo: repo, session: store}
}

func register(t *testing.T, f fixture, name, email, password string) *models.User {
	t.Helper()
	u, err := f.svc.Register(context.Background(), RegisterRequest{FullName: name, Email: email, Password: password})
	require.NoError(t, err)
	return u
}

func TestRegisterValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, RegisterRequest{FullName: "  ", Email: "a@b.com", Password: "abc"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Full name is required", verr.For("FullName"))
	assert.Equal(t, "Password must be at least 6 characters", verr.For("Password"))
	assert.Empty(t, verr.For("Email"))

	_, err = f.svc.Register(ctx, RegisterRequest{FullName: "Ada", Email: "not-an-email", Password: "secret1"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Email is not a valid email address", verr.For("Email"))

	count, err := f.repo.UserCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRegisterDoesNotLogIn(t *testing.T) {
	f := setup(t)

	u := register(t, f, " Ada Lovelace ", " ada@example.com ", "secret1")
	assert.Positive(t, u.ID)
	assert.Equal(t, "Ada Lovelace", u.FullName)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.False(t, f.session.IsLoggedIn())
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := setup(t)
	register(t, f, "Ada", "ada@example.com", "secret1")

	_, err := f.svc.Register(context.Background(), RegisterRequest{FullName: "Other", Email: "ada@example.com", Password: "secret2"})
	assert.ErrorIs(t, err, models.ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := register(t, f, "Ada", "ada@example.com", "secret1")

	_, err := f.svc.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "wrong12"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.False(t, f.session.IsLoggedIn())

	_, err = f.svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	got, err := f.svc.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, session.State{LoggedIn: true, UserID: u.ID, Email: "ada@example.com", FullName: "Ada"}, f.session.Snapshot())
}

func TestLoginRequiresFields(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Login(context.Background(), LoginRequest{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)
}

func TestLogout(t *testing.T) {
	f := setup(t)
	register(t, f, "Ada", "ada@example.com", "secret1")
	_, err := f.svc.Login(context.Background(), LoginRequest{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout())
	assert.False(t, f.session.IsLoggedIn())

	_, err = f.svc.CurrentUser(context.Background())
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestUpdateProfile(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	register(t, f, "Ada", "ada@example.com", "secret1")
	register(t, f, "Bob", "bob@example.com", "secret1")
	_, err := f.svc.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = f.svc.UpdateProfile(ctx, ProfileRequest{FullName: "Ada", Email: "bob@example.com"})
	assert.ErrorIs(t, err, models.ErrEmailTaken)

	// keeping your own email is fine
	u, err := f.svc.UpdateProfile(ctx, ProfileRequest{FullName: "Ada L.", Email: "ada@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", u.FullName)

	u, err = f.svc.UpdateProfile(ctx, ProfileRequest{FullName: "Ada L.", Email: "ada@lovelace.dev"})
	require.NoError(t, err)

	stored, err := f.repo.UserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@lovelace.dev", stored.Email)
	assert.Equal(t, "ada@lovelace.dev", f.session.Email())
	assert.Equal(t, "Ada L.", f.session.FullName())
}

func TestUpdateProfileNeedsSession(t *testing.T) {
	f := setup(t)

	_, err := f.svc.UpdateProfile(context.Background(), ProfileRequest{FullName: "Ada", Email: "ada@example.com"})
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestChangePassword(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	register(t, f, "Ada", "ada@example.com", "secret1")
	_, err := f.svc.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)

	err = f.svc.ChangePassword(ctx, PasswordRequest{Current: "nope123", New: "secret2"})
	assert.ErrorIs(t, err, ErrWrongPassword)

	err = f.svc.ChangePassword(ctx, PasswordRequest{Current: "secret1", New: "123"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "New password must be at least 6 characters", verr.For("New"))

	require.NoError(t, f.svc.ChangePassword(ctx, PasswordRequest{Current: "secret1", New: "secret2"}))

	require.NoError(t, f.svc.Logout())
	_, err = f.svc.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "secret2"})
	assert.NoError(t, err)
}
