package mansion

import (
	"github.com/dchest/safefile"
	"github.com/pkg/errors"
)

// WriteOutput atomically replaces the file at path with data: readers
// either see the old contents or the new ones, never a partial write.
func WriteOutput(path string, data []byte) error {
	f, err := safefile.Create(path, 0644)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()

	_, err = f.Write(data)
	if err != nil {
		return errors.WithStack(err)
	}

	err = f.Commit()
	if err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// OutputPath returns output if set, and input otherwise
func OutputPath(input string, output string) string {
	if output == "" {
		return input
	}
	return output
}
