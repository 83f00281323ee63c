package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"backoffice-service/internal/model"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func TestRequireCapabilityOwnerBypass(t *testing.T) {
	c, rec := newTestContext(t)
	c.Set(identityKey, &Identity{
		User:       model.User{Username: "owner"},
		Link:       model.UserCompany{CompanyID: 1, IsOwner: true},
		Permission: nil,
	})

	err := RequireCapability(model.CapabilityUsers)(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireCapabilityFlagGranted(t *testing.T) {
	c, rec := newTestContext(t)
	c.Set(identityKey, &Identity{
		User: model.User{Username: "staff"},
		Link: model.UserCompany{CompanyID: 1},
		Permission: &model.UserPermission{
			CanManageContacts: true,
		},
	})

	err := RequireCapability(model.CapabilityContacts)(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireCapabilityFlagDenied(t *testing.T) {
	c, rec := newTestContext(t)
	c.Set(identityKey, &Identity{
		User: model.User{Username: "staff"},
		Link: model.UserCompany{CompanyID: 1},
		Permission: &model.UserPermission{
			CanManageContacts: true,
		},
	})

	err := RequireCapability(model.CapabilityProducts)(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireCapabilityNoPermissionRecord(t *testing.T) {
	c, rec := newTestContext(t)
	c.Set(identityKey, &Identity{
		User:       model.User{Username: "staff"},
		Link:       model.UserCompany{CompanyID: 1},
		Permission: nil,
	})

	err := RequireCapability(model.CapabilityContacts)(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireCapabilityNoIdentity(t *testing.T) {
	c, rec := newTestContext(t)

	err := RequireCapability(model.CapabilityContacts)(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIdentityCan(t *testing.T) {
	owner := &Identity{Link: model.UserCompany{IsOwner: true}}
	assert.True(t, owner.Can(model.CapabilityContacts))
	assert.True(t, owner.Can(model.CapabilityUsers))
	assert.True(t, owner.Can(model.CapabilityProducts))
	assert.True(t, owner.Can(model.CapabilitySectors))

	staff := &Identity{Permission: &model.UserPermission{CanManageSectors: true}}
	assert.True(t, staff.Can(model.CapabilitySectors))
	assert.False(t, staff.Can(model.CapabilityUsers))
}
