package tui

import (
	"github.com/mystictarot/mystic/internal/reading"
)

// shuffleDealtMsg fires when the shuffle delay elapses. The token is the
// session generation captured when the shuffle started; a stale token
// (reset happened in between) makes the deal a no-op.
type shuffleDealtMsg struct{ token int }

// oracleEventMsg wraps a streamed interpretation/chat event for the
// update loop.
type oracleEventMsg reading.Event

// oracleClosedMsg signals the event channel closed.
type oracleClosedMsg struct{}
