package omnicache

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The cache calls them on hot paths.
type Hooks interface {
	// The registry constructed a new driver handle.
	DriverResolved(driverType, registryKey string)

	// An unknown or empty driver type was resolved to the default type.
	DriverFallback(requested, used string)

	// Driver returned ok=false on Set/SetMulti (admission, backpressure).
	// key is the physical key for Set and the facade prefix for SetMulti.
	DriverSetRejected(key string, isMulti bool)

	// A batch read dropped an entry it could not decode and deleted it.
	// reason ∈ {"value_decode"}
	SelfHeal(physicalKey, reason string)

	// GetMulti found fewer keys than requested.
	PartialMulti(prefix string, requested, found int)

	// A driver operation failed. op ∈ {"get", "set", "delete",
	// "get_multi", "set_multi", "delete_multi"}
	DriverError(op string, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) DriverResolved(string, string)  {}
func (NopHooks) DriverFallback(string, string)  {}
func (NopHooks) DriverSetRejected(string, bool) {}
func (NopHooks) SelfHeal(string, string)        {}
func (NopHooks) PartialMulti(string, int, int)  {}
func (NopHooks) DriverError(string, error)      {}
