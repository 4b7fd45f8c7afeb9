package prompt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	prompts, err := LoadDefaults()
	require.NoError(t, err)
	require.Len(t, prompts, 6)

	reg, err := NewRegistry(prompts)
	require.NoError(t, err)

	for _, mode := range []string{"local", "remote"} {
		instructions, err := Instructions(reg, mode)
		require.NoError(t, err)
		require.Len(t, instructions, len(Probes))
		for probe, p := range instructions {
			require.Equal(t, probe, p.Config.Probe)
			require.Equal(t, mode, p.Config.Mode)
			require.NotEmpty(t, p.Instruction())
		}
	}
}

func TestDefaultLocalInstructions(t *testing.T) {
	reg, err := DefaultRegistry()
	require.NoError(t, err)

	cases := map[string]string{
		"relevance-local": "Does this prompt contain enough context to be understood clearly?",
		"formality-local": "Is this prompt too formal compared to a neutral 0.5 target?",
		"bias-local":      "Does this prompt contain implicit or explicit bias or stereotypes?",
	}
	for slug, want := range cases {
		p, err := reg.Get(slug)
		require.NoError(t, err)
		require.Equal(t, want, p.Instruction())
	}

	remote, err := reg.Get("formality-remote")
	require.NoError(t, err)
	require.Contains(t, remote.Instruction(), "Reply ONLY with a number from 0 (very informal) to 1 (very formal)")
}

func TestLoadValidation(t *testing.T) {
	cases := map[string]string{
		"MissingSlug":  "---\nprobe: bias\nmode: local\n---\nIs it biased?",
		"UnknownProbe": "---\nslug: x\nprobe: tone\nmode: local\n---\nHmm?",
		"UnknownMode":  "---\nslug: x\nprobe: bias\nmode: cloud\n---\nHmm?",
		"MissingBody":  "---\nslug: x\nprobe: bias\nmode: local\n---\n",
		"Empty":        "   ",
		"BadYAML":      "---\nslug: [\n---\nbody",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(name, []byte(data))
			require.Error(t, err)
		})
	}
}

func TestLoadPlainYAML(t *testing.T) {
	p, err := Load("inline", []byte("slug: bias-local\nprobe: bias\nmode: local\nsystem_template: Biased?\n"))
	require.NoError(t, err)
	require.Equal(t, "Biased?", p.Instruction())
}

func TestRegistryFor(t *testing.T) {
	t.Run("EmptyDirUsesEmbedded", func(t *testing.T) {
		reg, err := RegistryFor("")
		require.NoError(t, err)
		require.Len(t, reg.List(), 6)
	})

	t.Run("OverridesBySlug", func(t *testing.T) {
		dir := t.TempDir()
		data := "---\nslug: bias-local\nprobe: bias\nmode: local\n---\n\nIs this prompt unfair to any group?\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, "bias.md"), []byte(data), 0o600))

		reg, err := RegistryFor(dir)
		require.NoError(t, err)
		require.Len(t, reg.List(), 6)

		p, err := reg.Get("bias-local")
		require.NoError(t, err)
		require.Equal(t, "Is this prompt unfair to any group?", p.Instruction())
	})

	t.Run("EmptyDirectoryFails", func(t *testing.T) {
		_, err := RegistryFor(t.TempDir())
		require.Error(t, err)
	})
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	p := &Prompt{Config: Config{Slug: "bias-local"}}
	_, err := NewRegistry([]*Prompt{p, p})
	require.Error(t, err)
	require.Contains(t, err.Error(), "duplicate")
}
