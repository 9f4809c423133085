package rendercontext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	name string
	log  *[]string
}

func (r *recorder) Release() { *r.log = append(*r.log, r.name) }

func TestReleaseAllOrder(t *testing.T) {
	var log []string
	s := NewStore()
	a := &recorder{"geometry", &log}
	b := &recorder{"program", &log}

	s.Track(a)
	s.Track(b)
	s.Track(a)
	assert.Equal(t, 2, s.Len())

	s.ReleaseAll()
	s.ReleaseAll()

	assert.Equal(t, []string{"program", "geometry"}, log)
	assert.Zero(t, s.Len())
}
