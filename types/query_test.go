package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThoughtSortValid(t *testing.T) {
	for _, s := range append([]ThoughtSort{SortNone}, ValidThoughtSorts...) {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, ThoughtSort("createdat").Valid())
	assert.False(t, ThoughtSort("hearts_asc").Valid())

	assert.True(t, SortCreatedAt.Newest())
	assert.True(t, SortCreatedAtDesc.Newest())
	assert.False(t, SortCreatedAtAsc.Newest())
}

func TestThoughtQueryOffset(t *testing.T) {
	assert.Equal(t, 0, ThoughtQuery{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 20, ThoughtQuery{Page: 3, Limit: 10}.Offset())
	assert.Equal(t, 0, ThoughtQuery{Page: 0, Limit: 10}.Offset())
	assert.Equal(t, math.MaxInt, ThoughtQuery{Page: math.MaxInt, Limit: 10}.Offset())
	assert.Equal(t, math.MaxInt, ThoughtQuery{Page: math.MaxInt/10 + 2, Limit: 10}.Offset())
}

func TestThoughtUpdateEmpty(t *testing.T) {
	msg := "hello world"
	assert.True(t, ThoughtUpdate{}.Empty())
	assert.False(t, ThoughtUpdate{Unlike: true}.Empty())
	assert.False(t, ThoughtUpdate{Message: &msg}.Empty())
}
