package binance

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

// Params is an insertion-ordered parameter set.
// The signature covers the exact encoding produced by Encode, so the
// order parameters are added in is the order they are transmitted in.
type Params struct {
	keys   []string
	values map[string]string
}

// NewParams creates an empty parameter set
func NewParams() *Params {
	return &Params{values: make(map[string]string)}
}

// Set adds key or replaces its value in place
func (p *Params) Set(key, value string) *Params {
	if _, exists := p.values[key]; !exists {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
	return p
}

// Get returns the value stored under key
func (p *Params) Get(key string) (string, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Keys returns the keys in insertion order
func (p *Params) Keys() []string {
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// Len returns the number of parameters
func (p *Params) Len() int {
	return len(p.keys)
}

// Encode serializes as key1=value1&key2=value2 in insertion order.
// Keys and values are query-escaped; symbols, sides, decimals and timestamps
// contain nothing to escape, so for order params this is the raw string.
// The same encoding is both signed and sent.
func (p *Params) Encode() string {
	var sb strings.Builder
	for i, k := range p.keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(k))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(p.values[k]))
	}
	return sb.String()
}

// Sign returns the lowercase hex HMAC-SHA256 of params.Encode() keyed by secret
func Sign(params *Params, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(params.Encode()))
	return hex.EncodeToString(mac.Sum(nil))
}

// SignedQuery returns the encoded params with the signature appended last
func SignedQuery(params *Params, secret string) string {
	signature := Sign(params, secret)
	encoded := params.Encode()
	if encoded == "" {
		return "signature=" + signature
	}
	return encoded + "&signature=" + signature
}
