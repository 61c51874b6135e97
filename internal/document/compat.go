package document

import (
	"fmt"
	"strconv"
	"strings"
)

// ErrUnsupportedVersion reports a backup document written by a newer
// format than this build understands. It is a validation failure, so it
// also matches ErrInvalidDocument.
var ErrUnsupportedVersion = fmt.Errorf("%w: unsupported format version", ErrInvalidDocument)

// CheckVersion gates import on the document's format version: a document
// whose major version exceeds the supported one is rejected before any
// write. Minor and patch differences stay importable.
func CheckVersion(docVersion, supported string) error {
	docMajor, err := majorOf(docVersion)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrUnsupportedVersion, docVersion)
	}
	supMajor, err := majorOf(supported)
	if err != nil {
		return fmt.Errorf("%w: supported version %q is malformed", ErrUnsupportedVersion, supported)
	}
	if docMajor > supMajor {
		return fmt.Errorf("%w: document is %s, this build supports %s", ErrUnsupportedVersion, docVersion, supported)
	}
	return nil
}

func majorOf(v string) (int, error) {
	head, _, _ := strings.Cut(strings.TrimSpace(v), ".")
	return strconv.Atoi(head)
}
