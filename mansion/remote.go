package mansion

import (
	"net/url"

	"github.com/pkg/errors"
)

// IsRemote returns true if name is an http(s) URL rather than a local path
func IsRemote(name string) bool {
	u, err := url.Parse(name)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// OutputRule rejects an empty output for remote inputs
type OutputRule struct {
	input string
}

// OutputRequired is a validation rule for output flags: they may only be
// left empty when the input can be written back to.
func OutputRequired(input string) *OutputRule {
	return &OutputRule{input: input}
}

func (r *OutputRule) Validate(value interface{}) error {
	output, _ := value.(string)
	if output == "" && IsRemote(r.input) {
		return errors.New("must be set when input is a URL")
	}
	return nil
}
