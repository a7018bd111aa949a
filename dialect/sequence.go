package dialect

import "strconv"

// SequenceInfo describes sequence support: discovery SQL and creation syntax.
type SequenceInfo struct {
	supportsSequences bool
	supportsStartWith bool
	listSQL           string
	createFormat      string
}

// SequenceOption configures a SequenceInfo.
type SequenceOption func(*SequenceInfo)

// NewSequenceInfo returns the ANSI sequence descriptor with opts applied.
func NewSequenceInfo(opts ...SequenceOption) *SequenceInfo {
	s := &SequenceInfo{
		supportsSequences: true,
		supportsStartWith: true,
		listSQL:           "select sequence_schema, sequence_name from information_schema.sequences",
		createFormat:      "create sequence ${sequenceName}${startWith}",
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func WithoutSequences() SequenceOption {
	return func(s *SequenceInfo) {
		s.supportsSequences = false
		s.supportsStartWith = false
		s.listSQL = ""
		s.createFormat = ""
	}
}

func WithoutStartWith() SequenceOption {
	return func(s *SequenceInfo) { s.supportsStartWith = false }
}

func WithListSequencesSQL(sql string) SequenceOption {
	return func(s *SequenceInfo) { s.listSQL = sql }
}

func WithCreateSequence(format string) SequenceOption {
	return func(s *SequenceInfo) { s.createFormat = format }
}

func (s *SequenceInfo) SupportsSequences() bool { return s.supportsSequences }
func (s *SequenceInfo) SupportsStartWith() bool { return s.supportsStartWith }
func (s *SequenceInfo) ListSequencesSQL() string {
	return s.listSQL
}

// CreateSQL renders the create statement for a sequence. The start value is
// omitted when the vendor cannot set one explicitly.
func (s *SequenceInfo) CreateSQL(name string, start int64) string {
	startWith := ""
	if s.supportsStartWith && start != 0 {
		startWith = " start with " + strconv.FormatInt(start, 10)
	}
	return Tokens{"sequenceName": name, "startWith": startWith}.Replace(s.createFormat)
}
