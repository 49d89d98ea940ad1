package services

import (
	"testing"

	"resq-http-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdminService(t *testing.T) *AdminService {
	t.Helper()
	return NewAdminService(newTestDB(t), newTestConfig())
}

func TestAdminAuthenticate(t *testing.T) {
	svc := newAdminService(t)

	// BeforeSave钩子负责把明文哈希成bcrypt
	admin := &models.Admin{Username: "dispatch", Password: "open-sesame"}
	require.NoError(t, svc.CreateAdmin(admin))
	assert.NotEqual(t, "open-sesame", admin.Password)
	assert.True(t, admin.CheckPassword("open-sesame"))

	got, err := svc.Authenticate("dispatch", "open-sesame")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, got.ID)

	_, err = svc.Authenticate("dispatch", "wrong")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Authenticate("nobody", "open-sesame")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAdminUpdatePasswordRehashes(t *testing.T) {
	svc := newAdminService(t)

	admin := &models.Admin{Username: "dispatch", Password: "first-pass"}
	require.NoError(t, svc.CreateAdmin(admin))

	updated, err := svc.UpdateAdmin(admin.ID, map[string]interface{}{"password": "second-pass"})
	require.NoError(t, err)

	// 存储的必须是哈希，且只有新密码能通过校验
	assert.NotEqual(t, "second-pass", updated.Password)
	assert.True(t, updated.CheckPassword("second-pass"))
	assert.False(t, updated.CheckPassword("first-pass"))

	_, err = svc.Authenticate("dispatch", "second-pass")
	assert.NoError(t, err)
}

func TestAdminUsernameUniqueness(t *testing.T) {
	svc := newAdminService(t)

	require.NoError(t, svc.CreateAdmin(&models.Admin{Username: "dispatch", Password: "pw-one"}))
	err := svc.CreateAdmin(&models.Admin{Username: "dispatch", Password: "pw-two"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAdminDeleteLastAdminRefused(t *testing.T) {
	svc := newAdminService(t)

	admin := &models.Admin{Username: "dispatch", Password: "pw"}
	require.NoError(t, svc.CreateAdmin(admin))

	err := svc.DeleteAdmin(admin.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}
