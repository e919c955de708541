package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBook_HasTag(t *testing.T) {
	book := &Book{Tags: []string{"fiction", "fantasy"}}

	assert.True(t, book.HasTag("fiction"))
	assert.True(t, book.HasTag("fantasy"))
	assert.False(t, book.HasTag("horror"))
	assert.False(t, book.HasTag(""))
}

func TestBook_CanBeEditedBy(t *testing.T) {
	owner := &User{Record: Record{ID: "usr_owner"}, Role: RoleUser}
	admin := &User{Record: Record{ID: "usr_admin"}, Role: RoleAdmin}
	other := &User{Record: Record{ID: "usr_other"}, Role: RoleUser}

	book := &Book{OwnerID: "usr_owner"}

	tests := []struct {
		name     string
		user     *User
		expected bool
	}{
		{"owner can edit", owner, true},
		{"admin can edit", admin, true},
		{"other user cannot edit", other, false},
		{"nil user cannot edit", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, book.CanBeEditedBy(tt.user))
		})
	}
}
