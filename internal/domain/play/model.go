package play

const (
	SourceLive  = "live"
	SourceStats = "stats"

	// ClockPeriodStart is the sentinel applied when a record carries no clock.
	ClockPeriodStart = "PT12M00S"
)

// RawPlay is one upstream record before normalization, tagged by the feed
// that produced it. Exactly one of LiveOrder / StatsEventNum is set,
// depending on Source. Optional fields stay pointers so missing values are
// distinguishable from zero values until defaults are applied.
type RawPlay struct {
	Source string

	LiveOrder     *int64
	StatsEventNum *int64

	Period      *int
	Clock       *string
	HomeScore   *int
	AwayScore   *int
	ActionType  string
	SubType     string
	Description string
	PersonID    *int64
	PlayerName  string
	TeamTricode string

	// PointsTotal is the live feed's structured cumulative point total for
	// the acting player. The stats feed embeds the same number in the
	// description text instead.
	PointsTotal *int
}

// NormalizedPlay is the canonical sequence-ordered shape every retained raw
// record resolves to, regardless of source.
type NormalizedPlay struct {
	EventID       string
	SequenceIndex int
	OrderKey      int64
	Source        string

	Period      int
	Clock       string
	HomeScore   int
	AwayScore   int
	ActionType  string
	SubType     string
	Description string

	PersonID    int64
	PlayerName  string
	TeamTricode string

	// PlayerPoints is the acting player's cumulative point total as of this
	// play. Nil when the play carries no attribution (or the stats feed's
	// embedded total could not be parsed).
	PlayerPoints *int

	IsTerminal bool
}
