package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRouteCommand_Local(t *testing.T) {
	out, err := runCommand(t, "route", "--local", "--from", "-2,0", "--to", "2,0")
	require.NoError(t, err)
	assert.Contains(t, out, "Route (-2,0) -> (2,0) (4 steps)")
	assert.Contains(t, out, "0,0")
}

func TestRouteCommand_LocalOutOfRange(t *testing.T) {
	_, err := runCommand(t, "route", "--local", "--from", "0,0", "--to", "0,11")
	assert.ErrorIs(t, err, errNoRoute)
}

func TestRouteCommand_BadCoordinate(t *testing.T) {
	_, err := runCommand(t, "route", "--local", "--from", "zero", "--to", "1,0")
	assert.Error(t, err)
}

func TestGenerateThenRoute(t *testing.T) {
	t.Setenv("HEXROUTE_DB_PATH", filepath.Join(t.TempDir(), "w.db"))
	t.Setenv("HEXROUTE_RADIUS", "4")

	out, err := runCommand(t, "generate", "--seed", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved 61 hexes")

	_, err = runCommand(t, "route", "--from", "0,0", "--to", "0,0", "--speed", "-1")
	assert.Error(t, err)
}
