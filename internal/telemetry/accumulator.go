package telemetry

// MaxRecordLen bounds a pending record. Longer input keeps only its most recent bytes.
const MaxRecordLen = 200

// LineAccumulator turns a serial byte stream into newline-terminated records.
//
// Framing on the link is unreliable, so an oversized or unterminated record is
// trimmed from the front instead of growing without bound; the next newline
// resynchronizes the stream.
type LineAccumulator struct {
	buf []byte
	max int
}

func NewLineAccumulator() *LineAccumulator {
	return &LineAccumulator{buf: make([]byte, 0, MaxRecordLen+1), max: MaxRecordLen}
}

// Feed consumes one byte. It returns a complete record when b is '\n'.
func (a *LineAccumulator) Feed(b byte) (string, bool) {
	switch b {
	case '\r':
		return "", false
	case '\n':
		rec := string(a.buf)
		a.buf = a.buf[:0]
		return rec, true
	}
	a.buf = append(a.buf, b)
	if len(a.buf) > a.max {
		n := copy(a.buf, a.buf[len(a.buf)-a.max:])
		a.buf = a.buf[:n]
	}
	return "", false
}

// Write feeds p and calls emit for every record it completes.
func (a *LineAccumulator) Write(p []byte, emit func(string)) {
	for _, b := range p {
		if rec, ok := a.Feed(b); ok {
			emit(rec)
		}
	}
}

// Pending is the length of the unterminated record buffered so far.
func (a *LineAccumulator) Pending() int { return len(a.buf) }
