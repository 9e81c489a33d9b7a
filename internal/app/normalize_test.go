package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "oconnor", normalizeName("O'Connor"))
	assert.Equal(t, "smithjones", normalizeName(" Smith-Jones "))
	assert.Equal(t, "stjohn", normalizeName("St. John"))
}

func TestSurname(t *testing.T) {
	assert.Equal(t, "Doe", surname("Jane Doe"))
	assert.Equal(t, "Doe", surname("  Mr Jonathan Doe "))
	assert.Equal(t, "Madonna", surname("Madonna"))
	assert.Equal(t, "", surname("   "))
}

func TestPhoneTail(t *testing.T) {
	assert.Equal(t, "11123456", phoneTail("+44 7911 123456"))
	assert.Equal(t, "11123456", phoneTail("07911123456"))
	assert.Equal(t, "11123456", phoneTail("(0044) 7911-123456"))
	assert.Equal(t, "", phoneTail("1234567"), "fewer than eight digits is not comparable")
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Jane Doe", titleCase("jane doe"))
	assert.Equal(t, "Jane Doe", titleCase("JANE DOE"))
	assert.Equal(t, "Jane Doe", titleCase("  jane   DOE "))
}

func TestOutboundPhone(t *testing.T) {
	assert.Equal(t, "+447911123456", outboundPhone("07911 123456", "+44"))
	assert.Equal(t, "+447911123456", outboundPhone("+44 7911-123456", "+44"))
	assert.Equal(t, "+447911123456", outboundPhone("7911123456", "+44"))
	assert.Equal(t, "", outboundPhone("  ", "+44"))
}
