package types

// Credentials is an API key pair. It is fixed for the lifetime of a client.
type Credentials struct {
	APIKey    string
	SecretKey string
}

// IsComplete reports whether both halves of the pair are present
func (c Credentials) IsComplete() bool {
	return c.APIKey != "" && c.SecretKey != ""
}

// String keeps the pair out of logs and fmt output
func (c Credentials) String() string {
	if !c.IsComplete() {
		return "Credentials{incomplete}"
	}
	return "Credentials{APIKey: ***, SecretKey: ***}"
}

// GoString covers %#v
func (c Credentials) GoString() string {
	return c.String()
}
