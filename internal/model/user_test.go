package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentityKey(t *testing.T) {
	key := IdentityKey("Awa", "Ndiaye", "+221 77 000 00 00", "CNI-123")
	assert.Equal(t, "awa|ndiaye|+221770000000|cni-123", key)
}

// Same person, different casing, spacing and accents: one identity.
func TestIdentityKeyIsStableAcrossVariants(t *testing.T) {
	base := IdentityKey("Aïssatou", "Diallo", "771234567", "SN1234")
	variants := [][4]string{
		{"aissatou", "diallo", "771234567", "SN1234"},
		{"AÏSSATOU", "DIALLO", "771234567", "sn1234"},
		{"  Aïssatou ", "Dia llo", "77 123 45 67", "SN 1234"},
		{"Aissatou", "Diállo", "771234567", "SN1234"},
	}
	for _, v := range variants {
		assert.Equal(t, base, IdentityKey(v[0], v[1], v[2], v[3]),
			"variant %v should map to the same identity", v)
	}
}

func TestIdentityKeyDistinguishesDifferentPeople(t *testing.T) {
	a := IdentityKey("Awa", "Ndiaye", "771234567", "SN1")
	b := IdentityKey("Awa", "Ndiaye", "771234568", "SN1")
	assert.NotEqual(t, a, b)
}
