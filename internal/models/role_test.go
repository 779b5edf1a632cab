package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
	}{
		{"OWNER", RoleOwner},
		{"tenant", RoleTenant},
		{" Admin ", RoleAdmin},
		{"ROLE_OWNER", RoleOwner},
		{"role_tenant", RoleTenant},
	}
	for _, tt := range tests {
		got, err := ParseRole(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"", "GUEST", "ROLE_", "owner1"} {
		_, err := ParseRole(bad)
		assert.Error(t, err, bad)
	}
}

func TestRole_ZeroValueIsInvalid(t *testing.T) {
	var r Role
	assert.False(t, r.Valid())
	assert.True(t, DefaultRole.Valid())
	assert.Equal(t, RoleTenant, DefaultRole)

	_, err := r.Value()
	assert.Error(t, err)
	_, err = r.MarshalText()
	assert.Error(t, err)
}

func TestRole_JSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Role Role `json:"role"`
	}{RoleAdmin})
	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"ADMIN"}`, string(data))

	var decoded struct {
		Role Role `json:"role"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"role":"owner"}`), &decoded))
	assert.Equal(t, RoleOwner, decoded.Role)

	assert.Error(t, json.Unmarshal([]byte(`{"role":"landlord"}`), &decoded))
}

func TestRole_Scan(t *testing.T) {
	var r Role
	require.NoError(t, r.Scan("TENANT"))
	assert.Equal(t, RoleTenant, r)
	require.NoError(t, r.Scan([]byte("ADMIN")))
	assert.Equal(t, RoleAdmin, r)
	assert.Error(t, r.Scan(int64(2)))
	assert.Error(t, r.Scan("SUPERUSER"))
}

func TestParsePropertyStatus(t *testing.T) {
	s, err := ParsePropertyStatus("available")
	require.NoError(t, err)
	assert.Equal(t, PropertyAvailable, s)

	_, err = ParsePropertyStatus("sold")
	assert.Error(t, err)
}
