package transformer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSingularize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"users", "user"},
		{"person", "person"},
		{"people", "person"},
		{"categories", "category"},
		{"addresses", "address"},
		{"boxes", "box"},
		{"matches", "match"},
		{"wishes", "wish"},
		{"status", "status"},
		{"statuses", "status"},
		{"analysis", "analysis"},
		{"class", "class"},
		{"news", "news"},
		{"children", "child"},
		{"user_roles", "user_role"},
		{"user_people", "user_person"},
		{"Users", "User"},
		{"People", "Person"},
		{"s", "s"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, singularize(tt.in))
		})
	}
}

func TestNamer(t *testing.T) {
	n := newNamer()

	assert.Equal(t, "UserRoles", n.pascal("user_roles"))
	assert.Equal(t, "HelloWorld", n.pascal("hello-world"))
	assert.Equal(t, "UserRoles", n.pascal("userRoles"))
	assert.Equal(t, "AuthUser", n.pascal("auth_user"))

	assert.Equal(t, "createdAt", n.camel("created_at"))
	assert.Equal(t, "id", n.camel("id"))
	assert.Equal(t, "userId", n.camel("user_id"))

	assert.Equal(t, "IN_PROGRESS", n.screamingSnake("in progress"))
	assert.Equal(t, "IN_PROGRESS", n.screamingSnake("inProgress"))
	assert.Equal(t, "IN_PROGRESS", n.screamingSnake("in-progress"))
	assert.Equal(t, "_2FA", n.screamingSnake("2fa"))
	assert.Equal(t, "_", n.screamingSnake("!!"))
}

func TestUniqueName(t *testing.T) {
	taken := map[string]bool{"Status": true, "Status2": true}
	assert.Equal(t, "Status3", uniqueName("Status", func(s string) bool { return taken[s] }))
	assert.Equal(t, "Role", uniqueName("Role", func(s string) bool { return taken[s] }))
}
