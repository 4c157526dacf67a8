package replace_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/itchio/img4kit/cmd/replace"
	"github.com/itchio/img4kit/container"
	"github.com/itchio/wharf/wtest"
	"github.com/stretchr/testify/assert"
)

func Test_ReplaceKeepsFraming(t *testing.T) {
	dir, err := ioutil.TempDir("", "img4kit-replace")
	wtest.Must(t, err)
	defer os.RemoveAll(dir)

	img := &container.Image{
		Kind:        container.KindIMG4,
		Type:        "ibot",
		Description: "iBoot-1234",
		Payload:     []byte("old payload"),
		Extra:       [][]byte{{0x02, 0x01, 0x01}},
		OuterExtra:  [][]byte{{0x04, 0x02, 0xca, 0xfe}},
	}
	data, err := img.Encode()
	wtest.Must(t, err)

	img4 := filepath.Join(dir, "iboot.img4")
	wtest.Must(t, ioutil.WriteFile(img4, data, 0644))

	newPayload := make([]byte, 5000)
	for i := range newPayload {
		newPayload[i] = byte(i)
	}
	bin := filepath.Join(dir, "iboot.bin")
	wtest.Must(t, ioutil.WriteFile(bin, newPayload, 0644))

	wtest.Must(t, replace.Do(&replace.Params{Input: img4, Payload: bin}))

	data, err = ioutil.ReadFile(img4)
	wtest.Must(t, err)
	replaced, err := container.Decode(data)
	wtest.Must(t, err)

	assert.EqualValues(t, img.Kind, replaced.Kind)
	assert.EqualValues(t, img.Type, replaced.Type)
	assert.EqualValues(t, img.Description, replaced.Description)
	assert.EqualValues(t, img.Extra, replaced.Extra)
	assert.EqualValues(t, img.OuterExtra, replaced.OuterExtra)
	assert.EqualValues(t, newPayload, replaced.Payload)
}

func Test_ReplaceRejectsPlainFiles(t *testing.T) {
	dir, err := ioutil.TempDir("", "img4kit-replace")
	wtest.Must(t, err)
	defer os.RemoveAll(dir)

	plain := filepath.Join(dir, "plain.bin")
	wtest.Must(t, ioutil.WriteFile(plain, []byte("not a container"), 0644))

	err = replace.Do(&replace.Params{Input: plain, Payload: plain})
	assert.Error(t, err)

	data, err := ioutil.ReadFile(plain)
	wtest.Must(t, err)
	assert.EqualValues(t, "not a container", string(data))
}

func Test_ReplaceRemoteInputNeedsOutput(t *testing.T) {
	assert.Error(t, replace.Do(&replace.Params{Input: "https://example.org/iboot.img4", Payload: "iboot.bin"}))
}
