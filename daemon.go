// Copyright 2025 Brian Wang <wangbuke@gmail.com>
// SPDX-License-Identifier: Apache-2.0

package van

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/rs/xid"
)

// RunDaemon implements spec.md §5's cooperative loop: read one complete
// JSON request per line, compile synchronously, write one JSON response
// line, and continue until EOF. There is never more than one compile in
// flight and a malformed line yields an error response without ending the
// loop, exactly as a service's top-level read loop does in
// cmd/esbuild/service.go, adapted here to a line-delimited JSON protocol
// instead of a length-prefixed binary one.
func RunDaemon(c *Compiler, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	enc := json.NewEncoder(out)

	for scanner.Scan() {
		reqID := xid.New().String()
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			c.logger.Warn("malformed request line", "request_id", reqID, "error", err)
			if encErr := enc.Encode(errorResponse("malformed request JSON: " + err.Error())); encErr != nil {
				return encErr
			}
			continue
		}

		c.logger.Info("compile request", "request_id", reqID, "entry_path", req.EntryPath)
		resp := c.Compile(req)
		if !resp.OK {
			c.logger.Warn("compile failed", "request_id", reqID, "error", resp.Error)
		}
		if err := enc.Encode(resp); err != nil {
			return err
		}
	}
	return scanner.Err()
}
