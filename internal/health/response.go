package health

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/mcp"
)

const (
	unknownField   = "unknown"
	unknownError   = "unknown error"
	previewLimit   = 200
	msgNoResponse  = "no response from server"
	msgInvalid     = "invalid response: "
	msgServerError = "server error: "
)

// parseResponse looks for the initialize answer in buf. Anything before
// the first '{' is skipped, as are complete JSON values that carry neither
// a result nor an error. It reports false when more input is needed.
func parseResponse(buf []byte) (mcp.HealthStatus, bool) {
	for {
		start := bytes.IndexByte(buf, '{')
		if start < 0 {
			return mcp.HealthStatus{}, false
		}
		buf = buf[start:]

		dec := json.NewDecoder(bytes.NewReader(buf))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
				return mcp.HealthStatus{}, false
			}
			// Not JSON after all; try the next brace.
			buf = buf[1:]
			continue
		}

		if status, ok := classify(v); ok {
			return status, true
		}
		buf = buf[dec.InputOffset():]
	}
}

func classify(v any) (mcp.HealthStatus, bool) {
	msg, ok := v.(map[string]any)
	if !ok {
		return mcp.HealthStatus{}, false
	}

	if result, ok := msg["result"]; ok {
		info := member(result, "serverInfo")
		return mcp.Healthy(stringOr(member(info, "name"), unknownField), stringOr(member(info, "version"), unknownField)), true
	}
	if rpcErr, ok := msg["error"]; ok {
		return mcp.Failed(msgServerError + stringOr(member(rpcErr, "message"), unknownError)), true
	}
	return mcp.HealthStatus{}, false
}

func member(v any, key string) any {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return obj[key]
}

func stringOr(v any, def string) string {
	if s, ok := v.(string); ok {
		return s
	}
	return def
}

// unanswered builds the status for a stream that ended without an answer.
func unanswered(buf []byte) mcp.HealthStatus {
	if len(buf) == 0 {
		return mcp.Failed(msgNoResponse)
	}
	if len(buf) > previewLimit {
		buf = buf[:previewLimit]
	}
	return mcp.Failed(msgInvalid + strings.ToValidUTF8(string(buf), "�"))
}
