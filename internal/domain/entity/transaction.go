package entity

// TxState is the state of a submitted donation or claim transaction.
type TxState int

const (
	TxStateIdle TxState = iota
	TxStateSubmitted
	TxStateConfirmed
	TxStateFailed
)

func (s TxState) String() string {
	switch s {
	case TxStateIdle:
		return "idle"
	case TxStateSubmitted:
		return "submitted"
	case TxStateConfirmed:
		return "confirmed"
	case TxStateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions are possible.
func (s TxState) Terminal() bool {
	return s == TxStateConfirmed || s == TxStateFailed
}

// TxKind tells donation and claim lifecycles apart in logs and metrics.
type TxKind string

const (
	TxKindDonation TxKind = "donation"
	TxKindClaim    TxKind = "claim"
)

// TxSnapshot is a point-in-time view of a lifecycle.
type TxSnapshot struct {
	Kind    TxKind  `json:"kind"`
	ChainID uint64  `json:"chainId"`
	Hash    string  `json:"hash,omitempty"`
	State   TxState `json:"-"`
	Status  string  `json:"state"`
	Error   string  `json:"error,omitempty"`
	// UserMessage is set for failed lifecycles.
	UserMessage string `json:"userMessage,omitempty"`
}
