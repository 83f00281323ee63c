package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListContacts(t *testing.T) {
	mock := setupMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "contacts" WHERE company_id`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "company_id", "display_name"}).
			AddRow(1, 1, "Alpha").
			AddRow(2, 1, "Beta"))

	c, rec := newJSONContext(t, http.MethodGet, "/contacts", "")
	setIdentity(c, testIdentity(1, 1, true))

	require.NoError(t, ListContacts(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Contacts []struct {
			DisplayName string `json:"display_name"`
		} `json:"contacts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Contacts, 2)
	assert.Equal(t, "Alpha", resp.Contacts[0].DisplayName)
}

func TestCreateContactMissingDisplayName(t *testing.T) {
	c, rec := newJSONContext(t, http.MethodPost, "/contacts/new", `{"email":"x@example.com"}`)
	setIdentity(c, testIdentity(1, 1, true))

	require.NoError(t, CreateContact(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Errors, "display_name")
}

func TestCreateContact(t *testing.T) {
	mock := setupMockDB(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "contacts"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectCommit()

	body := `{"display_name":"Cliente Um","is_client":true,"is_active":true}`
	c, rec := newJSONContext(t, http.MethodPost, "/contacts/new", body)
	setIdentity(c, testIdentity(1, 3, true))

	require.NoError(t, CreateContact(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		ID        uint `json:"id"`
		CompanyID uint `json:"company_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint(5), resp.ID)
	assert.Equal(t, uint(3), resp.CompanyID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetContactEditCrossCompany(t *testing.T) {
	mock := setupMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "contacts" WHERE id = \$1 AND company_id = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	c, _ := newJSONContext(t, http.MethodGet, "/contacts/99/edit", "")
	c.SetParamNames("id")
	c.SetParamValues("99")
	setIdentity(c, testIdentity(1, 1, true))

	err := GetContactEdit(c)
	require.Error(t, err)

	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestGetContactEditInvalidID(t *testing.T) {
	c, _ := newJSONContext(t, http.MethodGet, "/contacts/abc/edit", "")
	c.SetParamNames("id")
	c.SetParamValues("abc")
	setIdentity(c, testIdentity(1, 1, true))

	err := GetContactEdit(c)
	require.Error(t, err)

	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestDeleteContact(t *testing.T) {
	mock := setupMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "contacts" WHERE id = \$1 AND company_id = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "company_id", "display_name"}).
			AddRow(5, 1, "Cliente Um"))
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "contacts"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c, rec := newJSONContext(t, http.MethodPost, "/contacts/5/delete", "")
	c.SetParamNames("id")
	c.SetParamValues("5")
	setIdentity(c, testIdentity(1, 1, true))

	require.NoError(t, DeleteContact(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListContactsNoIdentity(t *testing.T) {
	c, rec := newJSONContext(t, http.MethodGet, "/contacts", "")

	require.NoError(t, ListContacts(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
