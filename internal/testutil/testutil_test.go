package testutil

import (
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProjectRoot(t *testing.T) {
	root, err := GetProjectRoot()
	require.NoError(t, err)
	assert.NotEmpty(t, root)
	assert.True(t, FileExists(root+"/go.mod"))
}

func TestEnsureDir(t *testing.T) {
	tempDir := CreateTempDir(t)
	testDir := tempDir + "/test/nested/dir"

	err := EnsureDir(testDir)
	require.NoError(t, err)
	assert.True(t, DirExists(testDir))
}

func TestFileExists(t *testing.T) {
	assert.False(t, FileExists("/non/existent/file"))

	root, err := GetProjectRoot()
	require.NoError(t, err)
	assert.True(t, FileExists(root+"/go.mod"))
}

func TestCreateTestImage(t *testing.T) {
	img := CreateTestImage(40, 20, color.White)
	assert.Equal(t, 40, img.Bounds().Dx())
	assert.Equal(t, 20, img.Bounds().Dy())
}

func TestPlaceOnCanvas(t *testing.T) {
	small := CreateTestImage(10, 10, color.Black)
	out := PlaceOnCanvas(small, 50, 50, 20, 20)

	assert.Equal(t, 50, out.Bounds().Dx())
	r, _, _, _ := out.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), r, "canvas should stay white outside the pasted image")
	r, _, _, _ = out.At(25, 25).RGBA()
	assert.Equal(t, uint32(0), r, "pasted image should be black")
}

func TestWriteQRCodePNG(t *testing.T) {
	dir := CreateTempDir(t)
	path := WriteQRCodePNG(t, dir, "code.png", "HELLO")

	assert.Equal(t, filepath.Join(dir, "code.png"), path)
	assert.True(t, FileExists(path))
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(CreateTempDir(t), "nested", "file.txt")
	require.NoError(t, WriteFile(path, "content"))
	assert.Equal(t, "content", ReadFile(t, path))
}

func TestWriteBarcodeFixtures(t *testing.T) {
	dir := CreateTempDir(t)
	fixtures := DefaultBarcodeFixtures()

	require.NoError(t, WriteBarcodeFixtures(dir, fixtures))

	for _, f := range fixtures {
		assert.True(t, FileExists(filepath.Join(dir, f.File)), f.File)
	}
	manifest := ReadFile(t, filepath.Join(dir, "manifest.json"))
	assert.Contains(t, manifest, `"type": "EAN_13"`)
	assert.Contains(t, manifest, `"transform": "invert"`)
}

func TestRenderFixtureRotation(t *testing.T) {
	img, err := RenderFixture(BarcodeFixture{Name: "r", Type: "CODE_128", Data: "X", Transform: TransformRotate90})
	require.NoError(t, err)
	assert.Equal(t, 160, img.Bounds().Dx())
	assert.Equal(t, 400, img.Bounds().Dy())

	_, err = RenderFixture(BarcodeFixture{Name: "bad", Type: "HOLOGRAM", Data: "X"})
	require.Error(t, err)
}
