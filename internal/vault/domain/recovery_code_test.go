package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRecoveryCode(t *testing.T) {
	t.Run("produces the documented wire format", func(t *testing.T) {
		var random [16]byte
		for i := range random {
			random[i] = byte(i)
		}

		code := NewRecoveryCode(random)

		assert.Equal(t, "RK-000102030405060708090A0B0C0D0E0F"[:2], "RK", "sanity: prefix present")
		assert.True(t, code.Valid(), "generated code must match the wire format regex")
		assert.Equal(t, RecoveryCode("RK-00010203-04050607-08090A0B-0C0D0E0F"), code)
	})

	t.Run("different random input produces different codes", func(t *testing.T) {
		var a, b [16]byte
		a[0] = 1
		b[0] = 2

		assert.NotEqual(t, NewRecoveryCode(a), NewRecoveryCode(b))
	})
}

func TestRecoveryCode_Valid(t *testing.T) {
	tests := []struct {
		name string
		code RecoveryCode
		want bool
	}{
		{"well formed", "RK-AABBCCDD-11223344-55667788-99AABBCC", true},
		{"lowercase hex rejected", "rk-aabbccdd-11223344-55667788-99aabbcc", false},
		{"wrong group length", "RK-AABBCC-11223344-55667788-99AABBCC", false},
		{"missing prefix", "AABBCCDD-11223344-55667788-99AABBCC", false},
		{"empty", "", false},
		{"extra trailing characters", "RK-AABBCCDD-11223344-55667788-99AABBCCX", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.Valid())
		})
	}
}
