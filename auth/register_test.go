package auth_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/jrsteele09/go-auth-client/auth"
	"github.com/jrsteele09/go-auth-client/routes"
	"github.com/jrsteele09/go-auth-client/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerData() auth.RegisterData {
	return auth.RegisterData{
		Username: "dave",
		Email:    "dave@example.com",
		Password: "pw",
		Role:     users.RoleUploader,
	}
}

func TestRegister(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	f.ctrl.Init(ctx)

	received := make(chan map[string]string, 1)
	f.setRegister(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		received <- body
		w.WriteHeader(http.StatusCreated)
	})

	data := registerData()
	data.Role = "uploader"
	require.NoError(t, f.ctrl.Register(ctx, data))

	require.Equal(t, map[string]string{
		"username": "dave",
		"email":    "dave@example.com",
		"password": "pw",
		"role":     "Uploader",
	}, <-received)

	// No session change, straight to the login surface
	require.Equal(t, auth.StatusAnonymous, f.ctrl.Session().Status)
	require.Equal(t, []string{routes.RouteLogin}, f.history.Paths())
	require.Zero(t, f.store.Writes())
}

func TestRegisterValidationErrors(t *testing.T) {
	testCases := []struct {
		name    string
		status  int
		body    string
		field   string
		message string
	}{
		{"duplicate username", http.StatusBadRequest, `{"username":["already taken"]}`, "username", "already taken"},
		{"first field in form order", http.StatusBadRequest, `{"role":["bad role"],"email":["invalid email"]}`, "email", "invalid email"},
		{"unknown fields sorted", http.StatusBadRequest, `{"zeta":["z"],"alpha":["a"]}`, "alpha", "a"},
		{"plain string message", http.StatusBadRequest, `{"password":"too short"}`, "password", "too short"},
		{"non field errors", http.StatusBadRequest, `{"non_field_errors":["passwords too similar"]}`, "", "passwords too similar"},
		{"detail", http.StatusConflict, `{"detail":"conflict"}`, "", "conflict"},
		{"skips empty lists", http.StatusBadRequest, `{"username":[],"email":["taken"]}`, "email", "taken"},
		{"not json", http.StatusBadRequest, `<html>bad</html>`, "", "registration failed"},
		{"empty object", http.StatusBadRequest, `{}`, "", "registration failed"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := setupTestFixture(t)
			f.setRegister(statusHandler(tc.status, tc.body))

			err := f.ctrl.Register(context.Background(), registerData())
			require.ErrorIs(t, err, auth.ErrValidationFailed)

			var verr *auth.ValidationError
			require.True(t, errors.As(err, &verr))
			require.Equal(t, tc.field, verr.Field)
			require.Equal(t, tc.message, verr.Message)
			require.Empty(t, f.history.Paths())
		})
	}
}

func TestRegisterServerError(t *testing.T) {
	f := setupTestFixture(t)
	f.setRegister(statusHandler(http.StatusInternalServerError, `{"username":["boom"]}`))

	err := f.ctrl.Register(context.Background(), registerData())
	require.ErrorIs(t, err, auth.ErrUnknown)
	require.False(t, errors.Is(err, auth.ErrValidationFailed))
}

func TestRegisterClientValidation(t *testing.T) {
	f := setupTestFixture(t)
	f.setRegister(func(w http.ResponseWriter, r *http.Request) {
		t.Error("invalid registration must not reach the server")
	})

	testCases := []struct {
		name   string
		modify func(*auth.RegisterData)
		field  string
	}{
		{"username", func(d *auth.RegisterData) { d.Username = " " }, "username"},
		{"email missing", func(d *auth.RegisterData) { d.Email = "" }, "email"},
		{"email invalid", func(d *auth.RegisterData) { d.Email = "not-an-email" }, "email"},
		{"password", func(d *auth.RegisterData) { d.Password = "" }, "password"},
		{"role", func(d *auth.RegisterData) { d.Role = "Admin" }, "role"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data := registerData()
			tc.modify(&data)

			err := f.ctrl.Register(context.Background(), data)
			var verr *auth.ValidationError
			require.True(t, errors.As(err, &verr))
			require.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	require.Equal(t, "validation failed: username: already taken", auth.NewValidationError("username", "already taken").Error())
	require.Equal(t, "validation failed: registration failed", auth.NewValidationError("", "registration failed").Error())
}
