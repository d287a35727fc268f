package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmail(t *testing.T) {
	got, ok := Email("  Jane@Example.COM ")
	assert.True(t, ok)
	assert.Equal(t, "jane@example.com", got)

	for _, bad := range []string{"", "jane", "jane@", "jane@example", "ja ne@example.com", "@example.com"} {
		_, ok := Email(bad)
		assert.False(t, ok, bad)
	}
}

func TestPhone(t *testing.T) {
	for _, good := range []string{"", "+1234567890", "(555) 123-4567", "555 123 4567"} {
		_, ok := Phone(good)
		assert.True(t, ok, good)
	}
	for _, bad := range []string{"abc", "+1-555-CALL", "12#34"} {
		_, ok := Phone(bad)
		assert.False(t, ok, bad)
	}
}

func TestPassword(t *testing.T) {
	assert.False(t, Password("12345"))
	assert.True(t, Password("123456"))
}

func TestRoleAndRating(t *testing.T) {
	r, ok := Role(" Provider ")
	assert.True(t, ok)
	assert.Equal(t, "provider", r)
	_, ok = Role("superuser")
	assert.False(t, ok)

	n, ok := Rating("5")
	assert.True(t, ok)
	assert.Equal(t, 5, n)
	_, ok = Rating("0")
	assert.False(t, ok)
	_, ok = Rating("six")
	assert.False(t, ok)
}

func TestQAndCode(t *testing.T) {
	q, ok := Q("  hair & spa ")
	assert.True(t, ok)
	assert.Equal(t, "hair & spa", q)
	_, ok = Q("<script>")
	assert.False(t, ok)

	c, ok := Code("welcome20")
	assert.True(t, ok)
	assert.Equal(t, "WELCOME20", c)
	_, ok = Code("no spaces")
	assert.False(t, ok)
}

func TestDateAndSlot(t *testing.T) {
	d, ok := Date("2024-02-15")
	assert.True(t, ok)
	assert.Equal(t, 15, d.Day())
	_, ok = Date("15/02/2024")
	assert.False(t, ok)

	_, ok = Slot("09:00")
	assert.True(t, ok)
	_, ok = Slot("9:30")
	assert.False(t, ok)
}
