package ratecontrol

// Cursor holds the feed resume position and the size of the most recent
// successfully ingested batch.
//
// The position is the lastid parameter obtained from a previous response.
// An unset position means "start at the current newest article"; a position
// of 0 means "start at the oldest article still in the feed".
//
// Cursor has a single writer: the client's pull cycle. It is advanced only
// after a response has been confirmed valid, so a failed pull leaves it
// untouched and the next pull retries the same position.
type Cursor struct {
	position  *int64
	lastCount int
}

// NewCursor creates a [Cursor] at the given starting position, or at the
// current newest article when start is nil.
func NewCursor(start *int64) *Cursor {
	c := &Cursor{}
	if start != nil {
		v := *start
		c.position = &v
	}
	return c
}

// Position returns the current resume position. ok is false when the cursor
// is unset and the next fetch starts at the current newest article.
func (c *Cursor) Position() (id int64, ok bool) {
	if c.position == nil {
		return 0, false
	}
	return *c.position, true
}

// LastCount returns the number of articles in the most recent successfully
// ingested batch. Zero before the first successful pull.
func (c *Cursor) LastCount() int {
	return c.lastCount
}

// Advance moves the cursor to the server-reported next position and records
// the observed batch size. Called exactly once per successful ingest.
func (c *Cursor) Advance(position int64, count int) {
	c.position = &position
	c.lastCount = count
}

// Seek repositions the cursor without touching the observed batch size.
// Used when the caller restores a persisted position between pulls.
func (c *Cursor) Seek(position int64) {
	c.position = &position
}
