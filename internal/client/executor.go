package client

import (
	"context"

	qbohttp "github.com/ledgerkit-io/qbo-client/internal/http"
)

// Execute runs one API call under a regular-window permit and decodes the
// body. The permit covers the whole round trip, including the decode, and is
// released whichever way the call ends.
//
// This is a package function rather than a Context method because methods
// cannot carry their own type parameters.
func Execute[U any](ctx context.Context, c *Context, req *qbohttp.Request, decode func(body []byte) (U, error)) (U, error) {
	var result U

	err := c.WithPermission(ctx, func(ctx context.Context) error {
		resp, err := c.httpClient.Do(ctx, req)
		if err != nil {
			return err
		}

		result, err = decode(resp.Body)

		return err
	})
	if err != nil {
		var zero U

		return zero, err
	}

	return result, nil
}

// executeRaw is Execute for calls whose body is returned untouched, such as
// PDF downloads.
func executeRaw(ctx context.Context, c *Context, req *qbohttp.Request) ([]byte, error) {
	return Execute(ctx, c, req, func(body []byte) ([]byte, error) {
		return body, nil
	})
}
