package settype_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/itchio/img4kit/cmd/settype"
	"github.com/itchio/img4kit/container"
	"github.com/itchio/wharf/wtest"
	"github.com/stretchr/testify/assert"
)

func Test_SetType(t *testing.T) {
	dir, err := ioutil.TempDir("", "img4kit-settype")
	wtest.Must(t, err)
	defer os.RemoveAll(dir)

	stub := filepath.Join(dir, "stub.im4p")
	wtest.Must(t, ioutil.WriteFile(stub, container.Stub, 0644))

	for _, bad := range []string{"", "krn", "kernel"} {
		assert.Error(t, settype.Do(&settype.Params{Input: stub, Type: bad}), bad)
	}

	data, err := ioutil.ReadFile(stub)
	wtest.Must(t, err)
	assert.EqualValues(t, container.Stub, data)

	out := filepath.Join(dir, "krnl.im4p")
	wtest.Must(t, settype.Do(&settype.Params{Input: stub, Type: "krnl", Output: out}))

	data, err = ioutil.ReadFile(out)
	wtest.Must(t, err)
	img, err := container.Decode(data)
	wtest.Must(t, err)
	assert.EqualValues(t, "krnl", img.Type)
	assert.EqualValues(t, "Unknown", img.Description)
	assert.EqualValues(t, []byte{0x00}, img.Payload)
}

func Test_SetTypeRemoteInputNeedsOutput(t *testing.T) {
	assert.Error(t, settype.Do(&settype.Params{Input: "http://example.org/stub.im4p", Type: "krnl"}))
}
