package unitypkg

import "upmconv/internal/spool"

// pendingParts holds payloads that arrived before their identifier's
// pathname member. Either slot may be nil.
type pendingParts struct {
	asset *spool.Buffer
	meta  *spool.Buffer
}

func (p *pendingParts) discard() {
	if p.asset != nil {
		p.asset.Close()
		p.asset = nil
	}
	if p.meta != nil {
		p.meta.Close()
		p.meta = nil
	}
}

// resolutionState tags the per-identifier state machine. An identifier moves
// from awaitingPath to exactly one of knownPath or failed and never back.
type resolutionState int

const (
	// awaitingPath is the initial state: the pathname member has not been
	// seen, payloads accumulate in pending parts.
	awaitingPath resolutionState = iota
	// knownPath means the pathname member resolved; name holds the output
	// path and subsequent payloads stream through directly.
	knownPath
	// failed means the pathname member could not be decoded; every further
	// member of the identifier is discarded silently.
	failed
)

// resolution is the per-identifier entry of the state table. The table lives
// for the whole pass; entries are never removed, so late duplicate members
// of resolved or failed identifiers are handled by their terminal state.
type resolution struct {
	state resolutionState
	name  string       // set when state == knownPath
	parts pendingParts // populated while state == awaitingPath
}
