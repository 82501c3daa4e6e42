package http

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"

	routeUnmatched = "unmatched"
)

// Response texts
const (
	RootBannerText = "Ethereum Balance Backend is running"

	ErrorInvalidAddressText  = "Invalid Ethereum address"
	ErrorNoBalancesFoundText = "Could not retrieve any balances for this address"
	ErrorInternalServerText  = "Internal server error"

	DetailInvalidAddressText = "address must be 0x followed by 40 hexadecimal characters"
)

// Common JSON keys
const (
	JSONKeyStatus = "status"
	JSONKeyOK     = "ok"
)
