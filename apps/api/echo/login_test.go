package echoapi

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edusoma/academia/core/user"
)

func Test_handlers_login(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.usrSvc.RegisterTeacher(context.Background(), user.NewTeacher{
		FirstName: "Emma", LastName: "Faber", Email: "emma@academia.test",
	})
	assert.NoError(t, err)

	tests := []struct {
		name         string
		form         url.Values
		wantLocation string
		wantCookie   bool
	}{
		{
			name:         "empty form",
			form:         url.Values{},
			wantLocation: "/login?error=Invalid+username+or+password.",
		},
		{
			name:         "unknown username",
			form:         url.Values{"username": {"nobody"}, "password": {"Faber"}},
			wantLocation: "/login?error=Invalid+username+or+password.",
		},
		{
			name:         "wrong password",
			form:         url.Values{"username": {"emma"}, "password": {"nope"}},
			wantLocation: "/login?error=Invalid+username+or+password.",
		},
		{
			name:         "teacher lands on the teacher dashboard",
			form:         url.Values{"username": {"emma"}, "password": {"Faber"}},
			wantLocation: "/teacher/dashboard",
			wantCookie:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.postForm("/login", tt.form, "")
			assertRedirect(t, rec, tt.wantLocation)

			var sessionSet bool
			for _, c := range rec.Result().Cookies() {
				if c.Name == sessionCookieName && c.Value != "" {
					sessionSet = true
					assert.True(t, c.HttpOnly)
				}
			}
			assert.Equal(t, tt.wantCookie, sessionSet)
		})
	}
}

func Test_handlers_loginPage(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name     string
		path     string
		wantBody string
	}{
		{name: "plain", path: "/login", wantBody: "{}\n"},
		{name: "error message", path: "/login?error=Access+denied.", wantBody: "{\"error\":\"Access denied.\"}\n"},
		{name: "bare error flag", path: "/login?error=", wantBody: "{\"error\":\"Invalid username or password.\"}\n"},
		{name: "logout flag", path: "/login?logout=", wantBody: "{\"logout\":\"You have been logged out.\"}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.get(tt.path, "")
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.wantBody, rec.Body.String())
		})
	}
}

func Test_handlers_logout(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.seedTeacher(t, "Emma", "Faber")

	rec := env.get("/logout", token)
	assertRedirect(t, rec, "/login?logout=")

	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "session cookie must be expired")
}

func Test_handlers_home_and_dashboard(t *testing.T) {
	env := newTestEnv(t)

	assertRedirect(t, env.get("/", ""), "/login")

	// no session
	assertRedirect(t, env.get("/dashboard", ""), "/login")
	// garbage token
	assertRedirect(t, env.get("/dashboard", "not-a-jwt"), "/login")

	_, stdToken := env.seedStudent(t, "Liam", "Mensah", nil)
	assertRedirect(t, env.get("/dashboard", stdToken), "/student/dashboard")

	adminToken := env.seedAdmin(t)
	assertRedirect(t, env.get("/dashboard", adminToken), "/admin/dashboard")
}
