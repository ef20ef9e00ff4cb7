package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/joshua31324324/user-management/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_AdminUpdateIsAttributed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, admin := env.seed(t, "admin@example.com", domain.RoleAdmin)
	regular, _ := env.seed(t, "regular@example.com", domain.RoleAuthenticated)

	updated, err := env.users.Update(ctx, admin, regular.ID, ProfileUpdate{Name: strPtr("Updated Name")})

	require.NoError(t, err)
	assert.Equal(t, "Admin: Updated Name", *updated.Name)

	stored, err := env.store.GetByID(ctx, regular.ID)
	require.NoError(t, err)
	assert.Equal(t, "Admin: Updated Name", *stored.Name)
}

func TestUserService_SelfUpdate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, self := env.seed(t, "jane@example.com", domain.RoleAuthenticated)
	other, _ := env.seed(t, "other@example.com", domain.RoleAuthenticated)

	updated, err := env.users.Update(ctx, self, user.ID, ProfileUpdate{Name: strPtr("Jane")})
	require.NoError(t, err)
	assert.Equal(t, "Jane", *updated.Name)

	_, err = env.users.Update(ctx, self, other.ID, ProfileUpdate{Name: strPtr("Jane")})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = env.users.Update(ctx, self, user.ID, ProfileUpdate{Email: strPtr("other@example.com")})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestUserService_UpdateProfileRequiresName(t *testing.T) {
	env := newTestEnv(t)
	user, self := env.seed(t, "jane@example.com", domain.RoleAuthenticated)

	_, err := env.users.UpdateProfile(context.Background(), self, user.ID, ProfileUpdate{Bio: strPtr("Just a bio")})

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "name", ve.Field)
	assert.True(t, ve.Missing)
}

func TestUserService_UpdateToProfessionalSetsStatus(t *testing.T) {
	env := newTestEnv(t)
	_, admin := env.seed(t, "admin@example.com", domain.RoleAdmin)
	user, _ := env.seed(t, "jane@example.com", domain.RoleAuthenticated)

	updated, err := env.users.Update(context.Background(), admin, user.ID, ProfileUpdate{Role: strPtr("PROFESSIONAL")})

	require.NoError(t, err)
	assert.Equal(t, domain.RoleProfessional, updated.Role)
	assert.True(t, updated.IsProfessional)
	assert.NotNil(t, updated.ProfessionalStatusUpdatedAt)
}

func TestUserService_List(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, admin := env.seed(t, "admin@example.com", domain.RoleAdmin)
	_, manager := env.seed(t, "manager@example.com", domain.RoleManager)
	_, regular := env.seed(t, "regular@example.com", domain.RoleAuthenticated)
	_, pro := env.seed(t, "pro@example.com", domain.RoleProfessional)

	_, err := env.users.List(ctx, regular, 1, 10)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = env.users.List(ctx, pro, 1, 10)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = env.users.List(ctx, domain.Anonymous, 1, 10)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	page, err := env.users.List(ctx, admin, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	assert.Len(t, page.Items, 4)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.Size)

	page, err = env.users.List(ctx, manager, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	assert.Len(t, page.Items, 1)
}

func TestUserService_ListNormalizesPaging(t *testing.T) {
	env := newTestEnv(t)
	_, admin := env.seed(t, "admin@example.com", domain.RoleAdmin)

	tests := []struct {
		name             string
		page, size       int
		wantPage, wantSz int
	}{
		{name: "zero values", page: 0, size: 0, wantPage: 1, wantSz: DefaultPageSize},
		{name: "negative", page: -3, size: -1, wantPage: 1, wantSz: DefaultPageSize},
		{name: "oversized", page: 1, size: 1000, wantPage: 1, wantSz: MaxPageSize},
		{name: "past the end", page: 5, size: 10, wantPage: 5, wantSz: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := env.users.List(context.Background(), admin, tt.page, tt.size)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPage, page.Page)
			assert.Equal(t, tt.wantSz, page.Size)
			assert.NotNil(t, page.Items)
		})
	}
}

func TestUserService_AuthorizesBeforeLookup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, regular := env.seed(t, "regular@example.com", domain.RoleAuthenticated)
	missing := uuid.New()

	_, err := env.users.Get(ctx, regular, missing)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = env.users.Update(ctx, regular, missing, ProfileUpdate{Name: strPtr("x")})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	assert.ErrorIs(t, env.users.Delete(ctx, regular, missing), domain.ErrForbidden)

	_, err = env.users.Upgrade(ctx, regular, missing)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = env.users.Unlock(ctx, regular, missing)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = env.users.Get(ctx, domain.Anonymous, missing)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestUserService_Get(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, self := env.seed(t, "jane@example.com", domain.RoleAuthenticated)
	_, manager := env.seed(t, "manager@example.com", domain.RoleManager)

	got, err := env.users.Get(ctx, self, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)

	got, err = env.users.Get(ctx, manager, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = env.users.Get(ctx, manager, uuid.New())
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserService_Upgrade(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, admin := env.seed(t, "admin@example.com", domain.RoleAdmin)
	regular, _ := env.seed(t, "regular@example.com", domain.RoleAuthenticated)
	pro, _ := env.seed(t, "pro@example.com", domain.RoleProfessional)
	manager, _ := env.seed(t, "manager@example.com", domain.RoleManager)

	upgraded, err := env.users.Upgrade(ctx, admin, regular.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleProfessional, upgraded.Role)
	assert.True(t, upgraded.IsProfessional)
	assert.NotNil(t, upgraded.ProfessionalStatusUpdatedAt)

	stored, _ := env.store.GetByID(ctx, regular.ID)
	assert.Equal(t, domain.RoleProfessional, stored.Role)

	// Upgrading again finds no eligible account.
	_, err = env.users.Upgrade(ctx, admin, regular.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = env.users.Upgrade(ctx, admin, pro.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = env.users.Upgrade(ctx, admin, manager.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = env.users.Upgrade(ctx, admin, uuid.New())
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserService_Delete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, manager := env.seed(t, "manager@example.com", domain.RoleManager)
	user, self := env.seed(t, "jane@example.com", domain.RoleAuthenticated)

	assert.ErrorIs(t, env.users.Delete(ctx, self, user.ID), domain.ErrForbidden)

	require.NoError(t, env.users.Delete(ctx, manager, user.ID))

	_, err := env.users.Get(ctx, manager, user.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	assert.ErrorIs(t, env.users.Delete(ctx, manager, user.ID), domain.ErrUserNotFound)
}

func TestUserService_ManagerCannotModifyAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin, adminActor := env.seed(t, "admin@example.com", domain.RoleAdmin)
	peer, _ := env.seed(t, "peer@example.com", domain.RoleManager)
	_, manager := env.seed(t, "manager@example.com", domain.RoleManager)

	_, err := env.users.Update(ctx, manager, admin.ID, ProfileUpdate{Email: strPtr("taken-over@example.com")})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = env.users.UpdateProfile(ctx, manager, admin.ID, ProfileUpdate{Name: strPtr("Renamed")})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	assert.ErrorIs(t, env.users.Delete(ctx, manager, admin.ID), domain.ErrForbidden)

	_, err = env.users.Unlock(ctx, manager, admin.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	stored, err := env.store.GetByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", stored.Email)
	assert.Nil(t, stored.Name)

	// Peers and lower roles stay manageable.
	updated, err := env.users.Update(ctx, manager, peer.ID, ProfileUpdate{Name: strPtr("Peer")})
	require.NoError(t, err)
	assert.Equal(t, "Admin: Peer", *updated.Name)

	require.NoError(t, env.users.Delete(ctx, adminActor, peer.ID))
	_, err = env.store.GetByID(ctx, peer.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserService_ManagerCanUpgradeUnverifiedAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pending, _ := env.seed(t, "pending@example.com", domain.RoleAnonymous)
	_, manager := env.seed(t, "manager@example.com", domain.RoleManager)

	upgraded, err := env.users.Upgrade(ctx, manager, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleProfessional, upgraded.Role)
}

func TestUserService_Create(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, admin := env.seed(t, "admin@example.com", domain.RoleAdmin)
	_, manager := env.seed(t, "manager@example.com", domain.RoleManager)
	_, regular := env.seed(t, "regular@example.com", domain.RoleAuthenticated)

	tests := []struct {
		name     string
		actor    domain.Actor
		req      CreateUserRequest
		wantErr  error
		wantRole domain.Role
	}{
		{name: "default role", actor: admin, req: CreateUserRequest{Email: "a@example.com", Password: testPassword}, wantRole: domain.RoleAuthenticated},
		{name: "admin creates admin", actor: admin, req: CreateUserRequest{Email: "b@example.com", Password: testPassword, Role: "ADMIN"}, wantRole: domain.RoleAdmin},
		{name: "manager creates professional", actor: manager, req: CreateUserRequest{Email: "c@example.com", Password: testPassword, Role: "professional"}, wantRole: domain.RoleProfessional},
		{name: "manager cannot create admin", actor: manager, req: CreateUserRequest{Email: "d@example.com", Password: testPassword, Role: "ADMIN"}, wantErr: domain.ErrRoleNotGrantable},
		{name: "anonymous role is not grantable", actor: admin, req: CreateUserRequest{Email: "e@example.com", Password: testPassword, Role: "ANONYMOUS"}, wantErr: domain.ErrRoleNotGrantable},
		{name: "regular user cannot create", actor: regular, req: CreateUserRequest{Email: "f@example.com", Password: testPassword}, wantErr: domain.ErrForbidden},
		{name: "anonymous cannot create", actor: domain.Anonymous, req: CreateUserRequest{Email: "g@example.com", Password: testPassword}, wantErr: domain.ErrUnauthenticated},
		{name: "unknown role", actor: admin, req: CreateUserRequest{Email: "h@example.com", Password: testPassword, Role: "ROOT"}, wantErr: domain.ErrValidation},
		{name: "duplicate email", actor: admin, req: CreateUserRequest{Email: "regular@example.com", Password: testPassword}, wantErr: domain.ErrEmailAlreadyExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := env.users.Create(ctx, tt.actor, tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, user.Role)
			assert.True(t, user.EmailVerified)
			assert.Equal(t, tt.wantRole == domain.RoleProfessional, user.IsProfessional)
		})
	}
}

func TestUserService_CreatedAccountCanLogIn(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, admin := env.seed(t, "admin@example.com", domain.RoleAdmin)

	_, err := env.users.Create(ctx, admin, CreateUserRequest{Email: "staff@example.com", Password: testPassword, Role: "MANAGER"})
	require.NoError(t, err)

	token, err := env.accounts.Login(ctx, "staff@example.com", testPassword)
	require.NoError(t, err)

	actor, err := env.tokens.Validate(token.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleManager, actor.Role)
}

func TestUserService_Unlock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, admin := env.seed(t, "admin@example.com", domain.RoleAdmin)
	user, self := env.seed(t, "jane@example.com", domain.RoleAuthenticated)

	for i := 0; i < DefaultMaxLoginAttempts; i++ {
		_, _ = env.accounts.Login(ctx, user.Email, "Wrong1pass")
	}

	_, err := env.users.Unlock(ctx, self, user.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	unlocked, err := env.users.Unlock(ctx, admin, user.ID)
	require.NoError(t, err)
	assert.False(t, unlocked.Locked)
	assert.Zero(t, unlocked.FailedLoginAttempts)

	_, err = env.accounts.Login(ctx, user.Email, testPassword)
	assert.NoError(t, err)

	_, err = env.users.Unlock(ctx, admin, uuid.New())
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
