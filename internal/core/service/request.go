package service

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Request is one command invocation as it arrives from a transport.
type Request struct {
	Command string
	Params  map[string]string
}

func NewRequest(command string, params map[string]string) Request {
	if params == nil {
		params = make(map[string]string)
	}
	return Request{Command: command, Params: params}
}

// Param returns the value for name. Empty values count as absent.
func (r Request) Param(name string) (string, bool) {
	v, ok := r.Params[name]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (r Request) keys() []string {
	keys := make([]string, 0, len(r.Params))
	for k := range r.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (r Request) String() string {
	pairs := make([]string, 0, len(r.Params))
	for _, k := range r.keys() {
		pairs = append(pairs, k+"="+r.Params[k])
	}
	return fmt.Sprintf("Request{command=%s, params={%s}}", r.Command, strings.Join(pairs, ", "))
}

// Encode renders the request as "command?k=v&..." with escaped values.
func (r Request) Encode() string {
	if len(r.Params) == 0 {
		return r.Command
	}
	pairs := make([]string, 0, len(r.Params))
	for _, k := range r.keys() {
		pairs = append(pairs, k+"="+url.QueryEscape(r.Params[k]))
	}
	return r.Command + "?" + strings.Join(pairs, "&")
}

// ParseRequest is the inverse of Encode. A leading slash on the command is dropped,
// pairs that are not exactly key=value (no value, or a second unescaped "=") are
// skipped and values that fail to unescape are kept raw.
func ParseRequest(raw string) Request {
	path, query, _ := strings.Cut(raw, "?")
	req := NewRequest(strings.TrimPrefix(path, "/"), nil)

	if query == "" {
		return req
	}
	for _, pair := range strings.Split(query, "&") {
		if strings.Count(pair, "=") != 1 {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		if key == "" || value == "" {
			continue
		}
		decoded, err := url.QueryUnescape(value)
		if err != nil {
			decoded = value
		}
		req.Params[key] = decoded
	}
	return req
}
