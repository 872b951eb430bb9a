package httpclient

import "fmt"

// ConfigurationError reports a named credential that the store cannot resolve.
type ConfigurationError struct {
	Credential string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("credential %q not found", e.Credential)
}

// NetworkError wraps a transport failure (connection, timeout, DNS).
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("request %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPStatusError reports a non-2xx response.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("request %s: unexpected status %d", e.URL, e.StatusCode)
}

// DecodeError reports a response body that is not valid JSON.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
