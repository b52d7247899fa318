package engine

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutputDir(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "outputs", "test_1j"), OutputDir(filepath.Join("data", "test_1j"), ""))
	assert.Equal(t, filepath.Join("data", "outputs", "test_1j"), OutputDir(filepath.Join("data", "test_1j")+"/", ""))
	assert.Equal(t, filepath.Join("/tmp/out", "test_1j"), OutputDir("data/test_1j", "/tmp/out"))
}

func TestFunc(t *testing.T) {
	var got Run
	e := Func(func(_ context.Context, r Run) error {
		got = r
		return nil
	})
	assert.NoError(t, e.Run(context.Background(), Run{Dataset: "d", OperationOnly: true}))
	assert.Equal(t, "d", got.Dataset)
	assert.True(t, got.OperationOnly)
}
