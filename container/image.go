// Package container reads and writes the DER framing around firmware
// payloads: bare IM4P images, and IMG4 files wrapping an IM4P.
//
// Only the framing is understood. Keybags, compression info and
// manifests are carried along verbatim, and payloads are never
// decrypted or decompressed.
package container

import (
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

const (
	// KindIM4P is a bare payload image
	KindIM4P = "IM4P"
	// KindIMG4 is a payload image bundled with a manifest
	KindIMG4 = "IMG4"
)

// Stub is the smallest valid IM4P: type "none", description "Unknown",
// and a single zero byte of payload.
var Stub = []byte{
	0x30, 0x18, 0x16, 0x04, 0x49, 0x4d, 0x34, 0x50, 0x16, 0x04, 0x6e, 0x6f,
	0x6e, 0x65, 0x16, 0x07, 'U', 'n', 'k', 'n', 'o', 'w', 'n', 0x04,
	0x01, 0x00,
}

// An Image is a decoded container.
type Image struct {
	Kind        string
	Type        string
	Description string
	Payload     []byte

	// raw DER elements following the payload in the IM4P sequence
	// (keybags, compression info)
	Extra [][]byte
	// raw DER elements following the IM4P in an IMG4 sequence
	// (manifest, restore info)
	OuterExtra [][]byte
}

// FormatError is returned when data isn't a container we understand
type FormatError struct {
	Reason string
}

var _ error = (*FormatError)(nil)

func (e *FormatError) Error() string {
	return fmt.Sprintf("container: %s", e.Reason)
}

func formatErrorf(format string, args ...interface{}) error {
	return errors.WithStack(&FormatError{Reason: fmt.Sprintf(format, args...)})
}

// Decode parses an IM4P or IMG4 container.
func Decode(data []byte) (*Image, error) {
	input := cryptobyte.String(data)

	var seq cryptobyte.String
	if !input.ReadASN1(&seq, asn1.SEQUENCE) {
		return nil, formatErrorf("not a DER sequence")
	}
	if !input.Empty() {
		return nil, formatErrorf("%d trailing bytes after container", len(input))
	}

	var magic cryptobyte.String
	if !seq.ReadASN1(&magic, asn1.IA5String) {
		return nil, formatErrorf("missing magic")
	}

	switch string(magic) {
	case KindIM4P:
		img := &Image{Kind: KindIM4P}
		err := decodeIM4PBody(seq, img)
		if err != nil {
			return nil, err
		}
		return img, nil

	case KindIMG4:
		var inner cryptobyte.String
		if !seq.ReadASN1(&inner, asn1.SEQUENCE) {
			return nil, formatErrorf("IMG4 without an IM4P sequence")
		}

		var innerMagic cryptobyte.String
		if !inner.ReadASN1(&innerMagic, asn1.IA5String) || string(innerMagic) != KindIM4P {
			return nil, formatErrorf("IMG4 holds something other than an IM4P")
		}

		img := &Image{Kind: KindIMG4}
		err := decodeIM4PBody(inner, img)
		if err != nil {
			return nil, err
		}

		img.OuterExtra, err = readElements(seq)
		if err != nil {
			return nil, err
		}
		return img, nil
	}

	return nil, formatErrorf("unknown magic %q", string(magic))
}

func decodeIM4PBody(body cryptobyte.String, img *Image) error {
	var typ, desc, payload cryptobyte.String

	if !body.ReadASN1(&typ, asn1.IA5String) {
		return formatErrorf("IM4P: missing type")
	}
	if !body.ReadASN1(&desc, asn1.IA5String) {
		return formatErrorf("IM4P: missing description")
	}
	if !body.ReadASN1(&payload, asn1.OCTET_STRING) {
		return formatErrorf("IM4P: missing payload")
	}

	img.Type = string(typ)
	img.Description = string(desc)
	img.Payload = append([]byte{}, payload...)

	var err error
	img.Extra, err = readElements(body)
	return err
}

func readElements(s cryptobyte.String) ([][]byte, error) {
	var elements [][]byte
	for !s.Empty() {
		var element cryptobyte.String
		var tag asn1.Tag
		if !s.ReadAnyASN1Element(&element, &tag) {
			return nil, formatErrorf("malformed trailing element")
		}
		elements = append(elements, append([]byte{}, element...))
	}
	return elements, nil
}

// Encode serializes the image back to DER, with the same framing it
// was decoded from.
func (img *Image) Encode() ([]byte, error) {
	var b cryptobyte.Builder

	switch img.Kind {
	case KindIM4P, "":
		img.addIM4P(&b)
	case KindIMG4:
		b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
			addString(b, KindIMG4)
			img.addIM4P(b)
			for _, element := range img.OuterExtra {
				b.AddBytes(element)
			}
		})
	default:
		return nil, formatErrorf("cannot encode unknown kind %q", img.Kind)
	}

	data, err := b.Bytes()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return data, nil
}

func (img *Image) addIM4P(b *cryptobyte.Builder) {
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		addString(b, KindIM4P)
		addString(b, img.Type)
		addString(b, img.Description)
		b.AddASN1OctetString(img.Payload)
		for _, element := range img.Extra {
			b.AddBytes(element)
		}
	})
}

func addString(b *cryptobyte.Builder, s string) {
	b.AddASN1(asn1.IA5String, func(b *cryptobyte.Builder) {
		b.AddBytes([]byte(s))
	})
}

// ValidType returns an error unless typ is a four-character code
func ValidType(typ string) error {
	if len(typ) != 4 {
		return errors.Errorf("invalid type %q (must be exactly 4 characters)", typ)
	}
	return nil
}
