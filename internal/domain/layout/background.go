package layout

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ErrInvalidBackground is returned for background references that are not images
var ErrInvalidBackground = errors.New("invalid background image")

// validateBackground accepts http(s), blob and relative URLs as given and
// sniffs data URIs to make sure they carry an image.
func validateBackground(ref string) error {
	if !strings.HasPrefix(ref, "data:") {
		u, err := url.Parse(ref)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidBackground, err)
		}
		switch u.Scheme {
		case "", "http", "https", "blob":
			return nil
		default:
			return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidBackground, u.Scheme)
		}
	}

	comma := strings.IndexByte(ref, ',')
	if comma < 0 {
		return fmt.Errorf("%w: malformed data uri", ErrInvalidBackground)
	}
	meta, payload := ref[len("data:"):comma], ref[comma+1:]

	var data []byte
	if strings.HasSuffix(meta, ";base64") {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidBackground, err)
		}
		data = decoded
	} else {
		decoded, err := url.PathUnescape(payload)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidBackground, err)
		}
		data = []byte(decoded)
	}

	detected := mimetype.Detect(data)
	if !strings.HasPrefix(detected.String(), "image/") {
		return fmt.Errorf("%w: detected %s", ErrInvalidBackground, detected.String())
	}
	return nil
}
