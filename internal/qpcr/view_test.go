package qpcr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestView_Order(t *testing.T) {
	wells, err := ParseWells([]RawRecord{
		rec("w1", "S2", "T1"),
		rec("w2", "S1", "T2"),
		rec("w3", "S2", "T1"),
		rec("w4", "S1", "T1"),
	})
	require.NoError(t, err)
	v := NewView(wells)

	assert.Equal(t, []Key{{"S2", "T1"}, {"S1", "T2"}, {"S1", "T1"}}, v.Keys())
	assert.Equal(t, []string{"T1", "T2"}, v.Targets())

	group := v.Wells("S2", "T1")
	require.Len(t, group, 2)
	assert.Equal(t, "w1", group[0].ID)
	assert.Equal(t, "w3", group[1].ID)

	assert.Len(t, v.TargetWells("T1"), 3)
	assert.Nil(t, v.Wells("S9", "T1"))
	assert.True(t, v.HasSample("S1"))
	assert.False(t, v.HasSample("S9"))
}
