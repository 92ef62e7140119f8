package config

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize(t *testing.T) {
	tempDir := filepath.Join(t.TempDir(), "pipesh")
	if _, err := Initialize(tempDir, log.New(io.Discard, "", 0)); err != nil {
		t.Fatal(err)
	}

	// Check that the config is valid
	cfg, err := Load(tempDir)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, tempDir, cfg.Dir())

	t.Run("Load config.yaml path", func(t *testing.T) {
		cfg, err := Load(filepath.Join(tempDir, ConfigurationName))
		assert.Nil(t, err)
		assert.Equal(t, tempDir, cfg.Dir())
	})

	t.Run("OpenHistory", func(t *testing.T) {
		hist, err := cfg.OpenHistory()
		require.NoError(t, err)
		require.NoError(t, hist.Add("echo persisted"))

		data, err := os.ReadFile(cfg.HistoryPath())
		assert.Nil(t, err)
		assert.Equal(t, "echo persisted\n", string(data))
	})

	t.Run("OpenAppLog", func(t *testing.T) {
		fd, err := cfg.OpenAppLog()
		assert.Nil(t, err)
		fd.Close()
	})

	t.Run("OpenEventLog", func(t *testing.T) {
		fd, err := cfg.OpenEventLog()
		assert.Nil(t, err)
		fd.Close()

		fd, err = cfg.ReadEventLog()
		assert.Nil(t, err)
		fd.Close()
	})

	t.Run("Initialize again", func(t *testing.T) {
		_, err := Initialize(tempDir, log.New(io.Discard, "", 0))
		assert.ErrorContains(t, err, "already exists")
	})
}

func TestLoadFs_Errors(t *testing.T) {
	cases := map[string]struct {
		contents string
		wantErr  string
	}{
		"unknown field": {
			contents: "prompt: '$ '\ncontinuation_prompt: '> '\ncolor: auto\nssh_port: 22\n",
			wantErr:  "ssh_port",
		},
		"invalid value": {
			contents: "prompt: '$ '\ncontinuation_prompt: '> '\ncolor: purple\n",
			wantErr:  "color",
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			fsys := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fsys, "/cfg/config.yaml", []byte(tc.contents), 0600))

			_, err := LoadFs(fsys, "/cfg")

			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing"), log.New(io.Discard, "", 0))

	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
