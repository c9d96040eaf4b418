package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]byte("title: A\n"), []byte("\nbody\n"))

	assert.NotEmpty(t, a)
	assert.Equal(t, a, Fingerprint([]byte("title: A\n"), []byte("\nbody\n")))
	assert.Equal(t, a, Fingerprint([]byte("title: A"), []byte("\nbody\n")))
	assert.NotEqual(t, a, Fingerprint([]byte("title: B\n"), []byte("\nbody\n")))
	assert.NotEqual(t, a, Fingerprint([]byte("title: A\n"), []byte("\nother\n")))
}
