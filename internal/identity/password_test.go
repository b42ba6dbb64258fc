package identity

import (
	"testing"

	"github.com/qchem/gausscat/internal/conf"
	"github.com/stretchr/testify/assert"
)

func TestCheckPolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		password string
		want     int
	}{
		{"strong", strongPassword, 0},
		{"too short", "Aa1!", 1},
		{"missing digit", "Abcdef!", 1},
		{"missing lower", "ABCDE1!", 1},
		{"missing upper", "abcde1!", 1},
		{"missing symbol", "Abcde12", 1},
		{"empty", "", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Len(t, CheckPolicy(testPolicy(), tt.password), tt.want)
		})
	}
}

func TestCheckPolicy_Relaxed(t *testing.T) {
	t.Parallel()

	msgs := CheckPolicy(conf.PasswordPolicy{RequiredLength: 3}, "abc")
	assert.Empty(t, msgs)
}

func TestCheckPolicy_Messages(t *testing.T) {
	t.Parallel()

	msgs := CheckPolicy(testPolicy(), "abc")
	assert.Contains(t, msgs, "Passwords must be at least 6 characters.")
	assert.Contains(t, msgs, "Passwords must have at least one digit ('0'-'9').")
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ADMIN", Normalize("  admin "))
	assert.Equal(t, Normalize("Ärger"), Normalize("äRGER"))
}

func TestHasher(t *testing.T) {
	t.Parallel()

	h := hasher{cost: 4}
	hash, err := h.hash("pw")
	assert.NoError(t, err)
	assert.True(t, h.verify(hash, "pw"))
	assert.False(t, h.verify(hash, "other"))
	assert.False(t, h.verify("not-a-hash", "pw"))
}
