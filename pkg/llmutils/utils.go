// Package llmutils provides helpers for model input and output.
package llmutils

import (
	"bytes"
	"encoding/json"

	"github.com/effective-security/toolrouter/pkg/llms"
	"github.com/effective-security/x/values"
)

var fence = []byte("```")

// CleanJSON returns the span from the first opening brace or bracket
// to the last closing one, models often wrap JSON in prose like
// "Here is the plan: [...]". The input is returned as is when no JSON is found.
func CleanJSON(bs []byte) []byte {
	start := firstIndex(bytes.IndexByte(bs, '{'), bytes.IndexByte(bs, '['))
	if start < 0 {
		return bs
	}
	bs = bs[start:]

	end := max(bytes.LastIndexByte(bs, '}'), bytes.LastIndexByte(bs, ']'))
	if end < 0 {
		return bs
	}
	return bs[:end+1]
}

func firstIndex(a, b int) int {
	switch {
	case a < 0:
		return b
	case b < 0:
		return a
	default:
		return min(a, b)
	}
}

// TrimBackticks removes a ```json or ``` fence
func TrimBackticks(text string) string {
	return string(BytesTrimBackticks([]byte(text)))
}

// BytesTrimBackticks removes a ```json or ``` fence,
// the language tag is dropped up to the end of the opening line
func BytesTrimBackticks(bs []byte) []byte {
	open := bytes.Index(bs, fence)
	if open < 0 {
		return bs
	}
	start := open + len(fence)
	for i := start; i < len(bs) && bs[i] != '{' && bs[i] != '['; i++ {
		if bs[i] == '\n' {
			start = i + 1
			break
		}
	}

	body := bs[start:]
	if end := bytes.LastIndex(body, fence); end >= 0 {
		return bytes.TrimSpace(body[:end])
	}
	return body
}

// ToJSON returns the compact JSON of val, or empty string if it can not be marshaled
func ToJSON(val any) string {
	js, _ := json.Marshal(val)
	return string(js)
}

// CountMessagesContentSize returns the size of roles and text parts of the messages
func CountMessagesContentSize(msgs []llms.Message) uint64 {
	var size uint64
	for _, m := range msgs {
		size += uint64(len(m.Role))
		for _, p := range m.Parts {
			if tc, ok := p.(llms.TextContent); ok {
				size += uint64(len(tc.Text))
			}
		}
	}
	return size
}

// CountResponseContentSize returns the size of the content of all choices
func CountResponseContentSize(resp *llms.ContentResponse) uint64 {
	if resp == nil {
		return 0
	}
	var size uint64
	for _, c := range resp.Choices {
		size += uint64(len(c.Content))
	}
	return size
}

// CountTokens returns the token usage reported by the providers in GenerationInfo
func CountTokens(resp *llms.ContentResponse) (in, out, total int64) {
	if resp == nil {
		return
	}
	for _, c := range resp.Choices {
		info := values.MapAny(c.GenerationInfo)
		in += info.Int64("InputTokens")
		out += info.Int64("OutputTokens")
		total += info.Int64("TotalTokens")
	}
	return
}
