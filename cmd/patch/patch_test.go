package patch_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/itchio/img4kit/cmd/patch"
	"github.com/itchio/img4kit/cmd/wrap"
	"github.com/itchio/img4kit/container"
	"github.com/itchio/wharf/wtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (string, func()) {
	dir, err := ioutil.TempDir("", "img4kit-patch")
	wtest.Must(t, err)

	payload := make([]byte, 16)
	for i := range payload {
		payload[i] = byte(i)
	}
	bin := filepath.Join(dir, "kernel.bin")
	wtest.Must(t, ioutil.WriteFile(bin, payload, 0644))

	wtest.Must(t, wrap.Do(&wrap.Params{
		Input:       bin,
		Output:      filepath.Join(dir, "kernel.im4p"),
		Type:        "krnl",
		Description: "test kernel",
	}))

	return dir, func() { os.RemoveAll(dir) }
}

func writeScript(t *testing.T, dir string, contents string) string {
	path := filepath.Join(dir, "fix.patch")
	wtest.Must(t, ioutil.WriteFile(path, []byte(contents), 0644))
	return path
}

func readPayload(t *testing.T, path string) *container.Image {
	data, err := ioutil.ReadFile(path)
	wtest.Must(t, err)
	img, err := container.Decode(data)
	wtest.Must(t, err)
	return img
}

func Test_PatchAndUnpatchContainer(t *testing.T) {
	dir, cleanup := setup(t)
	defer cleanup()

	im4p := filepath.Join(dir, "kernel.im4p")
	script := writeScript(t, dir, "# two edits\n0x2 0x02 0xaa\n4 4 0xbb\n")

	wtest.Must(t, patch.Do(&patch.Params{Input: im4p, Script: script}))

	img := readPayload(t, im4p)
	assert.EqualValues(t, "krnl", img.Type)
	assert.EqualValues(t, "test kernel", img.Description)
	assert.EqualValues(t, 0xaa, img.Payload[2])
	assert.EqualValues(t, 0xbb, img.Payload[4])
	assert.EqualValues(t, 0x03, img.Payload[3])

	// applying twice only skips
	wtest.Must(t, patch.Do(&patch.Params{Input: im4p, Script: script}))

	wtest.Must(t, patch.Do(&patch.Params{Input: im4p, Script: script, Undo: true}))
	img = readPayload(t, im4p)
	assert.EqualValues(t, 0x02, img.Payload[2])
	assert.EqualValues(t, 0x04, img.Payload[4])
}

func Test_ConflictLeavesInputUntouched(t *testing.T) {
	dir, cleanup := setup(t)
	defer cleanup()

	im4p := filepath.Join(dir, "kernel.im4p")
	before, err := ioutil.ReadFile(im4p)
	wtest.Must(t, err)

	script := writeScript(t, dir, "0x2 0x02 0xaa\n0x5 0x99 0xbb\n")
	err = patch.Do(&patch.Params{Input: im4p, Script: script})
	assert.Error(t, err)

	after, err := ioutil.ReadFile(im4p)
	wtest.Must(t, err)
	assert.EqualValues(t, before, after)

	out := filepath.Join(dir, "forced.im4p")
	wtest.Must(t, patch.Do(&patch.Params{Input: im4p, Script: script, Output: out, Force: true}))
	img := readPayload(t, out)
	assert.EqualValues(t, 0xaa, img.Payload[2])
	assert.EqualValues(t, 0xbb, img.Payload[5])
}

func Test_DryRunWritesNothing(t *testing.T) {
	dir, cleanup := setup(t)
	defer cleanup()

	im4p := filepath.Join(dir, "kernel.im4p")
	before, err := ioutil.ReadFile(im4p)
	wtest.Must(t, err)

	script := writeScript(t, dir, "0x2 0x02 0xaa\n")
	wtest.Must(t, patch.Do(&patch.Params{Input: im4p, Script: script, DryRun: true}))

	after, err := ioutil.ReadFile(im4p)
	wtest.Must(t, err)
	assert.EqualValues(t, before, after)
}

func Test_RawPatchesPlainFiles(t *testing.T) {
	dir, cleanup := setup(t)
	defer cleanup()

	bin := filepath.Join(dir, "kernel.bin")
	script := writeScript(t, dir, "0xf 0x0f 0x00\n")

	err := patch.Do(&patch.Params{Input: bin, Script: script})
	assert.Error(t, err, "plain files need --raw")

	wtest.Must(t, patch.Do(&patch.Params{Input: bin, Script: script, Raw: true}))
	data, err := ioutil.ReadFile(bin)
	wtest.Must(t, err)
	require.Len(t, data, 16)
	assert.EqualValues(t, 0x00, data[15])
}

func Test_MissingArgumentsAreRejected(t *testing.T) {
	assert.Error(t, patch.Do(&patch.Params{Script: "fix.patch"}))
	assert.Error(t, patch.Do(&patch.Params{Input: "kernel.im4p"}))
}

func Test_RemoteInputNeedsOutput(t *testing.T) {
	err := patch.Do(&patch.Params{Input: "https://example.org/kernel.im4p", Script: "fix.patch"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "URL")
}
