package rpc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/MikeyBeez/mission-control/internal/debug"
)

// ServeLines runs the tool server over a line-delimited JSON transport: one
// Request per input line, one Result per output line. This is the surface an
// agent runtime drives; any renderer speaking the same protocol works.
//
// Blank lines are skipped. A line that fails to parse produces an error
// response rather than terminating the loop. The loop ends at EOF or when
// the reader fails.
func (s *Server) ServeLines(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	enc := json.NewEncoder(w)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		var res Result
		if err := json.Unmarshal(line, &req); err != nil {
			res = failure(fmt.Errorf("invalid request: %v", err))
		} else {
			debug.Logf("tool request: %s", req.Tool)
			res = s.Handle(req)
		}

		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("writing response: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading requests: %w", err)
	}
	return nil
}
