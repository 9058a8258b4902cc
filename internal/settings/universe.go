package settings

// Instrument is a selectable symbol with its display name.
type Instrument struct {
	Symbol string `json:"symbol" mapstructure:"symbol"`
	Name   string `json:"name" mapstructure:"name"`
}

// DefaultInstruments is the stock universe offered when none is configured.
var DefaultInstruments = []Instrument{
	{Symbol: "INFY", Name: "Infosys"},
	{Symbol: "TCS", Name: "TCS"},
	{Symbol: "HEROMOTOCO", Name: "Hero Motocorp"},
	{Symbol: "RELIANCE", Name: "Reliance"},
	{Symbol: "HDFCBANK", Name: "HDFC Bank"},
	{Symbol: "ICICIBANK", Name: "ICICI Bank"},
	{Symbol: "SBIN", Name: "State Bank of India"},
	{Symbol: "WIPRO", Name: "Wipro"},
	{Symbol: "HINDUNILVR", Name: "Hindustan Unilever"},
	{Symbol: "ITC", Name: "ITC"},
}

// Universe is the set of instruments a selection may draw from.
type Universe struct {
	instruments []Instrument
	index       map[string]int
}

// NewUniverse builds a universe. Entries with an empty symbol are skipped and
// a repeated symbol keeps its first name. An empty list yields
// DefaultInstruments.
func NewUniverse(instruments []Instrument) *Universe {
	if len(instruments) == 0 {
		instruments = DefaultInstruments
	}
	u := &Universe{index: make(map[string]int, len(instruments))}
	for _, inst := range instruments {
		if inst.Symbol == "" {
			continue
		}
		if _, dup := u.index[inst.Symbol]; dup {
			continue
		}
		if inst.Name == "" {
			inst.Name = inst.Symbol
		}
		u.index[inst.Symbol] = len(u.instruments)
		u.instruments = append(u.instruments, inst)
	}
	return u
}

// DefaultUniverse returns the built-in ten-symbol universe.
func DefaultUniverse() *Universe {
	return NewUniverse(nil)
}

// Instruments returns the universe in configured order.
func (u *Universe) Instruments() []Instrument {
	out := make([]Instrument, len(u.instruments))
	copy(out, u.instruments)
	return out
}

// Contains reports whether symbol belongs to the universe.
func (u *Universe) Contains(symbol string) bool {
	_, ok := u.index[symbol]
	return ok
}

// Lookup returns the instrument for symbol.
func (u *Universe) Lookup(symbol string) (Instrument, bool) {
	i, ok := u.index[symbol]
	if !ok {
		return Instrument{}, false
	}
	return u.instruments[i], true
}

// Len returns the number of instruments.
func (u *Universe) Len() int { return len(u.instruments) }
