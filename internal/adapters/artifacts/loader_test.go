package artifacts

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/azoth-protocol/azoth-deploy/internal/domain"
	"github.com/azoth-protocol/azoth-deploy/internal/domain/config"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const outDir = "/project/out"

const nftManagerArtifact = `{
	"abi": [
		{"type":"constructor","inputs":[{"name":"azoth","type":"address"}],"stateMutability":"nonpayable"},
		{"type":"function","name":"initialize","inputs":[],"outputs":[],"stateMutability":"nonpayable"}
	],
	"bytecode": {"object": "0x6001600c60003960016000f300", "sourceMap": "", "linkReferences": {}},
	"deployedBytecode": {"object": "0x00"},
	"metadata": {"compiler": {"version": "0.8.28+commit.7893614a"}, "language": "Solidity"}
}`

func writeArtifact(t *testing.T, fs afero.Fs, name, content string) {
	t.Helper()
	dir := filepath.Join(outDir, name+".sol")
	require.NoError(t, fs.MkdirAll(dir, 0755))
	require.NoError(t, afero.WriteFile(fs, filepath.Join(dir, name+".json"), []byte(content), 0644))
}

func newTestLoader(fs afero.Fs) *Loader {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewLoader(&config.RuntimeConfig{ArtifactsDir: outDir}, fs, log)
}

func TestLoader_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("parses abi bytecode and compiler", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writeArtifact(t, fs, "NFTManager", nftManagerArtifact)

		artifact, err := newTestLoader(fs).Load(ctx, "NFTManager")
		require.NoError(t, err)

		assert.Equal(t, "NFTManager", artifact.Name)
		assert.Equal(t, filepath.Join(outDir, "NFTManager.sol", "NFTManager.json"), artifact.Path)
		assert.Equal(t, []byte{0x60, 0x01, 0x60, 0x0c, 0x60, 0x00, 0x39, 0x60, 0x01, 0x60, 0x00, 0xf3, 0x00}, artifact.Bytecode)
		assert.Equal(t, "0.8.28+commit.7893614a", artifact.CompilerVersion)
		assert.Len(t, artifact.ABI.Constructor.Inputs, 1)
		assert.Contains(t, artifact.ABI.Methods, "initialize")
	})

	t.Run("cached for the loader lifetime", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writeArtifact(t, fs, "NFTManager", nftManagerArtifact)
		loader := newTestLoader(fs)

		first, err := loader.Load(ctx, "NFTManager")
		require.NoError(t, err)

		// rebuilding mid-run doesn't change what the run deploys
		writeArtifact(t, fs, "NFTManager", `{}`)
		second, err := loader.Load(ctx, "NFTManager")
		require.NoError(t, err)
		assert.Same(t, first, second)
	})

	t.Run("missing artifact suggests similar names", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writeArtifact(t, fs, "NFTManager", nftManagerArtifact)
		writeArtifact(t, fs, "Factory", nftManagerArtifact)

		_, err := newTestLoader(fs).Load(ctx, "NFTManagr")
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrArtifactNotFound))

		var notFound *domain.ArtifactNotFoundError
		require.True(t, errors.As(err, &notFound))
		assert.Equal(t, []string{"NFTManager"}, notFound.Suggestions)
		assert.Contains(t, err.Error(), "did you mean NFTManager?")
	})

	t.Run("missing output directory", func(t *testing.T) {
		_, err := newTestLoader(afero.NewMemMapFs()).Load(ctx, "Azoth")
		assert.ErrorIs(t, err, domain.ErrArtifactNotFound)
	})

	malformed := []struct {
		name    string
		content string
	}{
		{"invalid json", `{"abi": [`},
		{"missing abi", `{"bytecode": {"object": "0x00"}}`},
		{"invalid abi", `{"abi": [{"type":"function","name":"f","inputs":[{"type":"notatype"}]}], "bytecode": {"object": "0x00"}}`},
		{"empty bytecode", `{"abi": [], "bytecode": {"object": "0x"}}`},
		{"odd hex", `{"abi": [], "bytecode": {"object": "0x600"}}`},
		{"unlinked library", `{"abi": [], "bytecode": {"object": "0x73__$b0a5c9ef0be0a4c3e1a2f35a1e0ab0a1c4$__63"}}`},
	}
	for _, tt := range malformed {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			writeArtifact(t, fs, "Azoth", tt.content)

			_, err := newTestLoader(fs).Load(ctx, "Azoth")
			assert.ErrorIs(t, err, domain.ErrArtifactMalformed)
		})
	}
}
