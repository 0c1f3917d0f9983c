package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "history:\n  base_dir: " + filepath.Join(dir, "history") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	a := &app{stdin: strings.NewReader(stdin), stdout: &out, stderr: &errOut}
	err := newApp(a).Run(context.Background(), append([]string{"play"}, args...))
	return out.String(), err
}

func TestPlayBotRunsAndHistory(t *testing.T) {
	cfgPath := writeConfig(t)

	out, err := run(t, "", "-p", "test", "-r", "2", "--seed", "7", "--config", cfgPath, "-l", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "game 1: move_limit after 5 moves")
	assert.Contains(t, out, "game 2: move_limit after 5 moves")
	assert.Contains(t, out, "played 2 games")
	assert.NotContains(t, out, "   -    -", "bots are not rendered")

	out, err = run(t, "", "history", "-p", "test", "--config", cfgPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "count score max_tile")
	assert.Contains(t, lines[1], "move_limit")
	assert.Contains(t, lines[1], " 5 ", "count column")

	out, err = run(t, "", "history", "-p", "test", "--outcome", "won", "--config", cfgPath)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "\n"), "no game was won")

	_, err = run(t, "", "history", "-p", "test", "--outcome", "quit", "--config", cfgPath)
	assert.ErrorContains(t, err, "--outcome")
	_, err = run(t, "", "history", "-p", "test", "--outcome", "draw", "--config", cfgPath)
	assert.ErrorContains(t, err, "--outcome")
}

func TestPlayHumanQuit(t *testing.T) {
	cfgPath := writeConfig(t)

	out, err := run(t, "q\n", "-p", "human", "--seed", "1", "--config", cfgPath, "-l", "error", "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "game 1: quit after 0 moves")

	out, err = run(t, "", "history", "-p", "human", "--config", cfgPath)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "\n"), "quit games are not recorded")
}

func TestPlayRejectsBadInput(t *testing.T) {
	cfgPath := writeConfig(t)

	_, err := run(t, "", "-p", "robot", "--config", cfgPath)
	assert.ErrorContains(t, err, "robot")

	_, err = run(t, "", "-p", "test", "-r", "0", "--config", cfgPath)
	assert.ErrorContains(t, err, "--runs")

	_, err = run(t, "", "-p", "remote", "--config", cfgPath, "-l", "error")
	assert.Error(t, err, "remote games are played over the server")
}
