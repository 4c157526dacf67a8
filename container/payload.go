package container

import (
	"github.com/itchio/img4kit/resource"
	"github.com/pkg/errors"
)

// Flags alter how a container is reopened
type Flags int

const (
	// SkipDecompression opens the payload as stored. This codec never
	// decompresses, so it only documents intent for callers that replace
	// payloads wholesale.
	SkipDecompression Flags = 1 << iota
)

// Payload is a resource over the payload region of a container. Writes
// and truncates only affect the payload; Sync re-encodes the container
// around it and rewrites the backing resource.
type Payload struct {
	*resource.Memory

	backing resource.Resource
	image   *Image
	flags   Flags
}

var _ resource.Resource = (*Payload)(nil)

// Reopen decodes the container held in backing and returns its payload.
func Reopen(backing resource.Resource, flags Flags) (*Payload, error) {
	data, err := resource.ReadAll(backing)
	if err != nil {
		return nil, err
	}

	img, err := Decode(data)
	if err != nil {
		return nil, err
	}

	return &Payload{
		Memory:  resource.NewMemory(append([]byte{}, img.Payload...)),
		backing: backing,
		image:   img,
		flags:   flags,
	}, nil
}

// Kind returns KindIM4P or KindIMG4
func (p *Payload) Kind() string {
	return p.image.Kind
}

func (p *Payload) Type() string {
	return p.image.Type
}

// SetType changes the four-character type of the container
func (p *Payload) SetType(typ string) error {
	err := ValidType(typ)
	if err != nil {
		return err
	}
	p.image.Type = typ
	return nil
}

func (p *Payload) Description() string {
	return p.image.Description
}

func (p *Payload) SetDescription(desc string) {
	p.image.Description = desc
}

// Extras returns the number of opaque elements carried along
func (p *Payload) Extras() int {
	return len(p.image.Extra) + len(p.image.OuterExtra)
}

// Sync writes the container, with the current payload, back to the
// backing resource.
func (p *Payload) Sync() error {
	p.image.Payload = p.Memory.Bytes()

	data, err := p.image.Encode()
	if err != nil {
		return err
	}

	err = resource.SeekTo(p.backing, 0)
	if err != nil {
		return err
	}

	n, err := p.backing.Write(data)
	if err != nil || n != len(data) {
		return errors.WithStack(&resource.IOError{Op: "write", Offset: 0, Want: int64(len(data)), Got: int64(n), Err: err})
	}

	err = p.backing.Truncate(int64(len(data)))
	if err != nil {
		return errors.WithStack(err)
	}
	return nil
}
