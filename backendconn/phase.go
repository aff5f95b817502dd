package backendconn

// Phase is a backend connection's position in the handshake → authenticate
// → command-response lifecycle (ConnectionPhase).
type Phase int

const (
	Handshaking Phase = iota
	Authenticating
	Command
)

func (p Phase) String() string {
	switch p {
	case Handshaking:
		return "HANDSHAKING"
	case Authenticating:
		return "AUTHENTICATING"
	case Command:
		return "COMMAND"
	default:
		return "UNKNOWN"
	}
}
