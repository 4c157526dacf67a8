package setdescription_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/itchio/img4kit/cmd/setdescription"
	"github.com/itchio/img4kit/container"
	"github.com/itchio/wharf/wtest"
	"github.com/stretchr/testify/assert"
)

func Test_SetDescription(t *testing.T) {
	dir, err := ioutil.TempDir("", "img4kit-setdescription")
	wtest.Must(t, err)
	defer os.RemoveAll(dir)

	img := &container.Image{
		Kind:        container.KindIMG4,
		Type:        "krnl",
		Description: "KernelCacheBuilder-1",
		Payload:     []byte("kernel bytes"),
		Extra:       [][]byte{{0x04, 0x02, 0xca, 0xfe}},
		OuterExtra:  [][]byte{{0xa0, 0x03, 0x02, 0x01, 0x07}},
	}
	data, err := img.Encode()
	wtest.Must(t, err)

	input := filepath.Join(dir, "kernel.img4")
	wtest.Must(t, ioutil.WriteFile(input, data, 0644))

	assert.Error(t, setdescription.Do(&setdescription.Params{Input: input}))

	out := filepath.Join(dir, "kernel-2.img4")
	wtest.Must(t, setdescription.Do(&setdescription.Params{
		Input:       input,
		Description: "KernelCacheBuilder-2",
		Output:      out,
	}))

	data, err = ioutil.ReadFile(out)
	wtest.Must(t, err)
	changed, err := container.Decode(data)
	wtest.Must(t, err)

	assert.EqualValues(t, "KernelCacheBuilder-2", changed.Description)
	assert.EqualValues(t, img.Kind, changed.Kind)
	assert.EqualValues(t, img.Type, changed.Type)
	assert.EqualValues(t, img.Payload, changed.Payload)
	assert.EqualValues(t, img.Extra, changed.Extra)
	assert.EqualValues(t, img.OuterExtra, changed.OuterExtra)

	// input is untouched when an output is given
	original, err := ioutil.ReadFile(input)
	wtest.Must(t, err)
	decoded, err := container.Decode(original)
	wtest.Must(t, err)
	assert.EqualValues(t, "KernelCacheBuilder-1", decoded.Description)
}

func Test_SetDescriptionRemoteInputNeedsOutput(t *testing.T) {
	assert.Error(t, setdescription.Do(&setdescription.Params{
		Input:       "https://example.org/kernel.img4",
		Description: "whatever",
	}))
}
