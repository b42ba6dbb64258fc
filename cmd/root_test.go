package cmd

import (
	"bytes"
	"testing"

	"github.com/qchem/gausscat/internal/buildinfo"
	"github.com/qchem/gausscat/internal/conf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionSkipsSettings(t *testing.T) {
	settings := &conf.Settings{}
	root := RootCommand(settings, buildinfo.NewContext("1.4.0", "2026-10-01", "abc123"))

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())

	assert.Contains(t, out.String(), "1.4.0")
	assert.Contains(t, out.String(), "abc123")
	assert.Empty(t, settings.ConfigFile())
}

func TestSubcommands(t *testing.T) {
	root := RootCommand(&conf.Settings{}, buildinfo.NewContext("dev", "", ""))

	names := make([]string, 0, len(root.Commands()))
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"serve", "migrate", "dbcopy", "seed", "user", "version"} {
		assert.Contains(t, names, want)
	}

	seedCmd, _, err := root.Find([]string{"seed"})
	require.NoError(t, err)
	require.Error(t, seedCmd.Args(seedCmd, nil))
}
