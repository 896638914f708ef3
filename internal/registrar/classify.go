package registrar

import "strings"

// Name Wrapper revert selectors that show up in raw RPC error text.
const (
	selectorUnauthorised        = "0xb455aae8"
	selectorOperationProhibited = "0xa2a72013"
)

// ClassifyError rewrites known collaborator failures into actionable text.
// This is best-effort substring matching on raw error messages and is purely
// cosmetic: control flow must depend only on whether a transaction hash was
// returned, never on this classification.
func ClassifyError(message, registrarAddress string) string {
	switch {
	case strings.Contains(message, selectorUnauthorised) || strings.Contains(message, "Unauthorised"):
		return "Name Wrapper: Unauthorised. The owner of the wrapped parent name must call " +
			"setApprovalForAll(registrar, true) on the Name Wrapper. Registrar: " + registrarAddress
	case strings.Contains(message, selectorOperationProhibited) || strings.Contains(message, "OperationProhibited"):
		return "Name Wrapper: OperationProhibited. The subdomain may already exist on-chain; try another label."
	default:
		return message
	}
}
