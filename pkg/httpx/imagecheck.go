package httpx

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const imageCheckTimeout = 5 * time.Second

// CheckImageURL issues a HEAD request against url and reports whether it
// resolves to an image content type. The request is aborted after a fixed
// timeout; callers impose no deadline of their own on this path.
func CheckImageURL(ctx context.Context, url string) error {
	ctx, cancel := context.WithTimeout(ctx, imageCheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("image url returned status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
		return fmt.Errorf("url is not an image (content type %q)", ct)
	}
	return nil
}
