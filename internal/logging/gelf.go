package logging

import (
	"fmt"
	"io"

	"github.com/Graylog2/go-gelf/gelf"
)

// DialGelf connects a GELF UDP writer to a Graylog endpoint
// (host:port). The returned writer can be passed to SetGelfWriter.
func DialGelf(addr string) (io.Writer, error) {
	w, err := gelf.NewWriter(addr)
	if err != nil {
		return nil, fmt.Errorf("gelf dial %s: %w", addr, err)
	}
	return w, nil
}
