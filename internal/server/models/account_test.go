package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_Authority(t *testing.T) {
	assert.Equal(t, "ROLE_USER", RoleUser.Authority())
	assert.Equal(t, "ROLE_ADMIN", RoleAdmin.Authority())
}
