// Package testutils holds fixtures shared by the package tests.
package testutils

import (
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// Animation is a flat Lottie document: 11 frames at 10fps on a 100x100
// canvas. "button" is a red square bound to slot "accent", "slider" moves
// across the bottom and "bg" is a white backdrop bound to slots "bg" and
// "fade" (opacity).
const Animation = `{
  "v": "5.7.0", "fr": 10, "ip": 0, "op": 11, "w": 100, "h": 100,
  "markers": [
    {"cm": "middle", "tm": 3, "dr": 4},
    {"cm": "hover", "tm": 5, "dr": 5}
  ],
  "layers": [
    {"nm": "button", "rect": [10, 10, 30, 30], "fill": {"sid": "accent", "c": [1, 0, 0, 1]}},
    {"nm": "slider", "rect": [0, 80, 10, 10], "to": [90, 80], "fill": {"c": [0, 1, 0]}},
    {"nm": "bg", "rect": [0, 0, 100, 100], "fill": {"sid": "bg", "c": [1, 1, 1, 1]}, "o": {"sid": "fade", "k": 100}}
  ]
}`

// SetupTestRepo creates a temporary directory and initializes a Loam repository in it.
// It returns the absolute path to the temp dir and the initialized repository.
// It fails the test immediately on error.
func SetupTestRepo(t *testing.T, opts ...loam.Option) (string, core.Repository) {
	t.Helper()

	absPath, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	repo, err := loam.Init(absPath, opts...)
	require.NoError(t, err, "Failed to init loam repo")

	return absPath, repo
}

// SetupRedis starts a miniredis server bound to the test and returns a
// client for it.
func SetupRedis(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}
