package memo

// Hooks are lightweight callbacks for cache events. They run inline on the
// calling goroutine, so implementations must be cheap and non-blocking
// (wrap slow sinks with hooks/async).
type Hooks interface {
	Hit(key string)
	Miss(key string)
	// Bypass: arguments could not form a key; reason is "unhashable".
	Bypass(reason string)
	// Rejected: a computed result was not stored (provider full or refused).
	Rejected(key string)
	// ProviderError: op is "get" or "set".
	ProviderError(op string, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) Hit(string)                  {}
func (NopHooks) Miss(string)                 {}
func (NopHooks) Bypass(string)               {}
func (NopHooks) Rejected(string)             {}
func (NopHooks) ProviderError(string, error) {}
