package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSettings(t *testing.T) {
	mock := setupMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "companies" WHERE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).
			AddRow(3, "Vidracaria Sol", "sol@example.com"))
	mock.ExpectQuery(`SELECT \* FROM "user_preferences" WHERE user_id`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "theme"}).
			AddRow(1, 1, "light"))

	c, rec := newJSONContext(t, http.MethodGet, "/settings", "")
	setIdentity(c, testIdentity(1, 3, true))

	require.NoError(t, GetSettings(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Company struct {
			Name string `json:"name"`
		} `json:"company"`
		Theme string `json:"theme"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Vidracaria Sol", resp.Company.Name)
	assert.Equal(t, "light", resp.Theme)
}

func TestGetSettingsCreatesDefaultPreference(t *testing.T) {
	mock := setupMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "companies" WHERE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).
			AddRow(3, "Vidracaria Sol", "sol@example.com"))
	mock.ExpectQuery(`SELECT \* FROM "user_preferences" WHERE user_id`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "user_preferences"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectCommit()

	c, rec := newJSONContext(t, http.MethodGet, "/settings", "")
	setIdentity(c, testIdentity(1, 3, true))

	require.NoError(t, GetSettings(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Theme string `json:"theme"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "dark", resp.Theme)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateSettingsValidation(t *testing.T) {
	mock := setupMockDB(t)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "companies" WHERE email`).
		WillReturnRows(countRows(0))

	body := `{"name":"Vidracaria Sol","email":"sol@example.com","theme":"blue"}`
	c, rec := newJSONContext(t, http.MethodPost, "/settings", body)
	setIdentity(c, testIdentity(1, 3, true))

	require.NoError(t, UpdateSettings(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Errors, "theme")
}

func TestUpdateSettingsMissingName(t *testing.T) {
	mock := setupMockDB(t)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "companies" WHERE email`).
		WillReturnRows(countRows(0))

	body := `{"name":"","email":"sol@example.com"}`
	c, rec := newJSONContext(t, http.MethodPost, "/settings", body)
	setIdentity(c, testIdentity(1, 3, true))

	require.NoError(t, UpdateSettings(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Errors, "name")
}

func TestUpdateSettingsDuplicateCompanyEmail(t *testing.T) {
	mock := setupMockDB(t)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "companies" WHERE email`).
		WillReturnRows(countRows(1))

	body := `{"name":"Vidracaria Sol","email":"taken@example.com"}`
	c, rec := newJSONContext(t, http.MethodPost, "/settings", body)
	setIdentity(c, testIdentity(1, 3, true))

	require.NoError(t, UpdateSettings(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Errors, "email")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateSettingsPersistsBothForms(t *testing.T) {
	mock := setupMockDB(t)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "companies" WHERE email`).
		WillReturnRows(countRows(0))
	mock.ExpectQuery(`SELECT \* FROM "companies" WHERE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "whatsapp_default_message"}).
			AddRow(3, "Old Name", "old@example.com", ""))
	mock.ExpectQuery(`SELECT \* FROM "user_preferences" WHERE user_id`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "theme"}).
			AddRow(1, 1, "dark"))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "companies"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "user_preferences"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	body := `{"name":"Vidracaria Sol","email":"sol@example.com","theme":"light"}`
	c, rec := newJSONContext(t, http.MethodPost, "/settings", body)
	setIdentity(c, testIdentity(1, 3, true))

	require.NoError(t, UpdateSettings(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Company struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"company"`
		Theme string `json:"theme"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Vidracaria Sol", resp.Company.Name)
	assert.Equal(t, "sol@example.com", resp.Company.Email)
	assert.Equal(t, "light", resp.Theme)
	assert.NoError(t, mock.ExpectationsWereMet())
}
