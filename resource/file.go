package resource

import (
	"io"
	"os"

	"github.com/itchio/wharf/eos"
	"github.com/pkg/errors"
)

// File is a resource backed by an *os.File
type File struct {
	f *os.File
}

var _ Resource = (*File)(nil)

// OpenFile opens path with the given flags as a resource.
func OpenFile(path string, flag int) (*File, error) {
	f, err := os.OpenFile(path, flag, 0644)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &File{f: f}, nil
}

func (fr *File) Length() (int64, error) {
	stats, err := fr.f.Stat()
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return stats.Size(), nil
}

func (fr *File) Seek(offset int64, whence int) (int64, error) {
	return fr.f.Seek(offset, whence)
}

func (fr *File) Read(p []byte) (int, error) {
	return fr.f.Read(p)
}

func (fr *File) Write(p []byte) (int, error) {
	return fr.f.Write(p)
}

func (fr *File) Truncate(size int64) error {
	return fr.f.Truncate(size)
}

func (fr *File) Close() error {
	return fr.f.Close()
}

// Input is a read-only resource over an eos file, so that scripts and
// payloads can be read from local paths as well as http(s) URLs.
type Input struct {
	file   eos.File
	name   string
	size   int64
	offset int64
}

var _ Resource = (*Input)(nil)

// OpenInput opens name through eos.
func OpenInput(name string) (*Input, error) {
	f, err := eos.Open(name)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	stats, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.WithStack(err)
	}
	if stats.IsDir() {
		f.Close()
		return nil, errors.Errorf("%s: is a directory", name)
	}

	return &Input{
		file: f,
		name: name,
		size: stats.Size(),
	}, nil
}

// Name returns the path or URL the input was opened from
func (in *Input) Name() string {
	return in.name
}

func (in *Input) Length() (int64, error) {
	return in.size, nil
}

func (in *Input) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = in.offset + offset
	case io.SeekEnd:
		abs = in.size + offset
	default:
		return in.offset, errors.Errorf("invalid whence %d", whence)
	}
	if abs < 0 {
		return in.offset, errors.Errorf("negative offset %d", abs)
	}
	in.offset = abs
	return abs, nil
}

func (in *Input) Read(p []byte) (int, error) {
	if in.offset >= in.size {
		return 0, io.EOF
	}

	if remaining := in.size - in.offset; int64(len(p)) > remaining {
		p = p[:remaining]
	}

	n, err := in.file.ReadAt(p, in.offset)
	in.offset += int64(n)
	if err == io.EOF && n > 0 {
		err = nil
	}
	return n, err
}

func (in *Input) Write(p []byte) (int, error) {
	return 0, errors.Errorf("%s: opened read-only", in.name)
}

func (in *Input) Truncate(size int64) error {
	return errors.Errorf("%s: opened read-only", in.name)
}

func (in *Input) Close() error {
	return in.file.Close()
}

// Load reads the whole input named name into a fresh Memory resource.
func Load(name string) (*Memory, error) {
	in, err := OpenInput(name)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	data, err := ReadAll(in)
	if err != nil {
		return nil, errors.WithMessage(err, name)
	}
	return NewMemory(data), nil
}
