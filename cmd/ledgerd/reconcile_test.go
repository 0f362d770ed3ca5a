package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBusinessDate(t *testing.T) {
	now := time.Date(2024, 3, 4, 23, 30, 0, 0, time.FixedZone("EAT", 3*3600))

	d, err := parseBusinessDate("", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), d)

	d, err = parseBusinessDate("2024-02-29", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), d)

	_, err = parseBusinessDate("29/02/2024", now)
	assert.Error(t, err)
}
