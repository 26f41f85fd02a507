package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlotKind_RoundTrip(t *testing.T) {
	names := []string{"Line Plot", "Bar Chart", "Scatter Plot", "Distribution Plot", "Count Plot"}
	for i, k := range PlotKinds {
		assert.Equal(t, names[i], k.String())

		got, ok := ParsePlotKind(names[i])
		assert.True(t, ok)
		assert.Equal(t, k, got)
	}

	_, ok := ParsePlotKind("Pie Chart")
	assert.False(t, ok)
	assert.Equal(t, "Unknown Plot", PlotKind(99).String())
}

func TestPlotRequest_Axes(t *testing.T) {
	assert.True(t, PlotRequest{XColumn: "x", YColumn: "y"}.HasY())
	assert.False(t, PlotRequest{XColumn: None}.HasX())
	assert.False(t, PlotRequest{YColumn: ""}.HasY())
}
