package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/arena"
)

func TestOpenHeap(t *testing.T) {
	resetFlags()
	capacity = 8192

	h, err := openHeap()
	require.NoError(t, err)
	require.Equal(t, 8192, h.Capacity())
	require.Equal(t, arena.SourceHeap, h.Arena().Source())
}

func TestOpenHeap_BadFlags(t *testing.T) {
	resetFlags()
	sourceName = "disk"
	_, err := openHeap()
	require.Error(t, err)

	resetFlags()
	capacity = 8
	_, err = openHeap()
	require.Error(t, err)
}

func TestSetupLogging_BadLevel(t *testing.T) {
	resetFlags()
	logLevel = "loud"
	require.Error(t, setupLogging(nil, nil))
	resetFlags()
}
