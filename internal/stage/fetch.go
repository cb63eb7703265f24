// SPDX-License-Identifier: MPL-2.0

package stage

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
)

// ErrChecksumMismatch indicates fetched content did not match its published
// checksum. This is security-relevant and never tolerated: the partial
// download is removed and the whole pipeline aborts.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// ChecksumError reports a checksum verification failure with both values.
// It wraps ErrChecksumMismatch so callers can classify with errors.Is.
type ChecksumError struct {
	URL      string
	Expected string
	Got      string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch in fetched %q: %s != %s", e.URL, e.Got, e.Expected)
}

func (e *ChecksumError) Unwrap() error { return ErrChecksumMismatch }

// fetchURL downloads url to target, verifying the content digest against
// checksum (algorithm chosen by checksum shape). On any failure the partial
// target file is removed.
func fetchURL(url, target, checksum string) error {
	hasher, err := hasherFor(checksum)
	if err != nil {
		return err
	}

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to fetch %q: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("failed to fetch %q: %s", url, resp.Status)
	}

	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to fetch %q to %q: %w", url, target, err)
	}
	defer f.Close()

	if _, err := io.Copy(io.MultiWriter(f, hasher), resp.Body); err != nil {
		os.Remove(target)
		return fmt.Errorf("failed to fetch %q: %w", url, err)
	}

	digest := hex.EncodeToString(hasher.Sum(nil))
	if digest != checksum {
		os.Remove(target)
		return &ChecksumError{URL: url, Expected: checksum, Got: digest}
	}
	return nil
}
