package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/eth-act/evmtrace/internal/detector"
	"github.com/eth-act/evmtrace/internal/evm"
	"github.com/retroenv/retrogolib/assert"
)

//nolint:funlen // test functions can be long
func TestLoadCode(t *testing.T) {
	t.Run("load binary file", func(t *testing.T) {
		path := createTempFile(t, "code.bin", []byte{0x60, 0x01, 0x00})

		code, err := New().LoadCode(path, detector.Binary)
		assert.NoError(t, err)
		assert.Equal(t, []byte{0x60, 0x01, 0x00}, code)
	})

	t.Run("load hex file", func(t *testing.T) {
		path := createTempFile(t, "code.hex", []byte("0x600100\n"))

		code, err := New().LoadCode(path, detector.Hex)
		assert.NoError(t, err)
		assert.Equal(t, []byte{0x60, 0x01, 0x00}, code)
	})

	t.Run("load hex file without prefix", func(t *testing.T) {
		path := createTempFile(t, "code.txt", []byte("  5b00  "))

		code, err := New().LoadCode(path, detector.Hex)
		assert.NoError(t, err)
		assert.Equal(t, []byte{0x5b, 0x00}, code)
	})

	t.Run("invalid hex file", func(t *testing.T) {
		path := createTempFile(t, "code.hex", []byte("0x6g"))

		_, err := New().LoadCode(path, detector.Hex)
		assert.Error(t, err)
		assert.True(t, errors.Is(err, evm.ErrInvalidHex))
	})

	t.Run("fixture kind", func(t *testing.T) {
		path := createTempFile(t, "test.json", []byte("{}"))

		_, err := New().LoadCode(path, detector.Fixture)
		assert.ErrorContains(t, err, "contains no code")
	})

	t.Run("non-existent file", func(t *testing.T) {
		_, err := New().LoadCode("/nonexistent/code.hex", detector.Hex)
		assert.Error(t, err)
	})
}

func TestLoadFixture(t *testing.T) {
	path := createTempFile(t, "test.json", []byte(`{"test": {"pre": {"0x01": {"code": "0x00"}}}}`))

	file, err := New().LoadFixture(path)
	assert.NoError(t, err)
	assert.Equal(t, []string{"test"}, file.Names())

	path = createTempFile(t, "broken.json", []byte(`{"test": `))
	_, err = New().LoadFixture(path)
	assert.ErrorContains(t, err, "loading fixture")
}

func createTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	assert.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}
