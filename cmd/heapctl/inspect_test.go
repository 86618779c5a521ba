package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// saveArena replays a trace into a file-backed arena and returns the file path.
func saveArena(t *testing.T, lines ...string) string {
	t.Helper()
	resetFlags(t)
	quiet = true
	arenaFile = filepath.Join(t.TempDir(), "heap.bin")
	trace := writeTrace(t, lines...)

	_, err := captureOutput(t, func() error {
		return runReplay(context.Background(), []string{trace})
	})
	require.NoError(t, err)
	path := arenaFile
	resetFlags(t)
	return path
}

func TestInspectCommand(t *testing.T) {
	path := saveArena(t,
		"alloc a 10",
		"alloc b 20",
		"alloc c 30",
		"free a",
		"free c",
	)
	inspectBlocks = true
	t.Cleanup(func() { inspectBlocks = false })

	output, err := captureOutput(t, func() error {
		return runInspect([]string{path})
	})
	require.NoError(t, err)
	assertContains(t, output, []string{
		"(132 bytes)",
		"Blocks:     3 (1 with a free-list successor)",
		"Capacity:   60 bytes",
		"Requested:  20 bytes",
		"OFFSET",
		"0x22",
	})
}

// TestInspectCommand_SingleFreeBlock: a lone free block is the list tail and
// has no successor, so nothing is reported as linked.
func TestInspectCommand_SingleFreeBlock(t *testing.T) {
	path := saveArena(t, "alloc a 10", "alloc b 10", "free a")

	output, err := captureOutput(t, func() error {
		return runInspect([]string{path})
	})
	require.NoError(t, err)
	assertContains(t, output, []string{"Blocks:     2 (0 with a free-list successor)"})
	assert.NotContains(t, output, "linked free")
}

func TestInspectCommand_JSON(t *testing.T) {
	path := saveArena(t, "alloc a 5000", "alloc b 0")
	jsonOut = true

	output, err := captureOutput(t, func() error {
		return runInspect([]string{path})
	})
	require.NoError(t, err)

	var res inspectResult
	assertJSON(t, output, &res)
	assert.Equal(t, 2, res.Blocks)
	assert.Equal(t, 5000+2*24, res.Size, "close trims the page padding")
	assert.EqualValues(t, 5000, res.RequestedBytes)
	assert.Empty(t, res.List)
}

func TestInspectCommand_Corrupt(t *testing.T) {
	resetFlags(t)
	path := filepath.Join(t.TempDir(), "bad.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 30), 0o600))

	_, err := captureOutput(t, func() error {
		return runInspect([]string{path})
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "truncated header")
}
