package coin

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/tradeweave/errors"
)

// IsCC reports whether s is a valid ticker.
var IsCC = regexp.MustCompile(`^[A-Z]{3,4}$`).MatchString

const (
	// MaxInt bounds the whole part in both directions.
	MaxInt int64 = 999999999999999

	// FracUnit is the number of fractional units in one whole.
	FracUnit int64 = 1000000000
	MaxFrac        = FracUnit - 1
)

// Coin is a fixed point amount of a single asset class. Whole and
// Fractional always carry the same sign, Fractional is in 10^-9 units.
// Amounts of different tickers never combine.
type Coin struct {
	Whole      int64  `protobuf:"varint,1,opt,name=whole,proto3" json:"whole,omitempty"`
	Fractional int64  `protobuf:"varint,2,opt,name=fractional,proto3" json:"fractional,omitempty"`
	Ticker     string `protobuf:"bytes,3,opt,name=ticker,proto3" json:"ticker,omitempty"`
}

func NewCoin(whole, fractional int64, ticker string) Coin {
	return Coin{Whole: whole, Fractional: fractional, Ticker: ticker}
}

func NewCoinp(whole, fractional int64, ticker string) *Coin {
	c := NewCoin(whole, fractional, ticker)
	return &c
}

// ID is the asset class of the coin.
func (c Coin) ID() string {
	return c.Ticker
}

// Add sums two amounts of the same asset class. A zero coin without a
// ticker is neutral.
func (c Coin) Add(o Coin) (Coin, error) {
	switch {
	case c.Ticker == "" && c.IsZero():
		return o, nil
	case o.Ticker == "" && o.IsZero():
		return c, nil
	case c.Ticker != o.Ticker:
		return Coin{}, errors.Wrapf(errors.ErrCurrency, "adding %s to %s", c.Ticker, o.Ticker)
	}
	return Coin{
		Whole:      c.Whole + o.Whole,
		Fractional: c.Fractional + o.Fractional,
		Ticker:     c.Ticker,
	}.normalize()
}

func (c Coin) Negative() Coin {
	return Coin{Whole: -c.Whole, Fractional: -c.Fractional, Ticker: c.Ticker}
}

func (c Coin) Subtract(amount Coin) (Coin, error) {
	return c.Add(amount.Negative())
}

// Compare orders normalized amounts, ignoring the ticker.
func (c Coin) Compare(o Coin) int {
	if c.Whole != o.Whole {
		return sign(c.Whole - o.Whole)
	}
	return sign(c.Fractional - o.Fractional)
}

func sign(n int64) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}

func (c Coin) Equals(o Coin) bool {
	return c == o
}

// IsEmpty is true for a nil or zero coin.
func IsEmpty(c *Coin) bool {
	return c == nil || c.IsZero()
}

func (c Coin) IsZero() bool {
	return c.Whole == 0 && c.Fractional == 0
}

func (c Coin) IsPositive() bool {
	return c.Whole > 0 || (c.Whole == 0 && c.Fractional > 0)
}

func (c Coin) IsNonNegative() bool {
	return c.Whole >= 0 && c.Fractional >= 0
}

func (c *Coin) Clone() *Coin {
	if c == nil {
		return nil
	}
	cpy := *c
	return &cpy
}

// Validate checks the ticker and the value ranges. Negative amounts are
// valid, callers reject them where they make no sense.
func (c Coin) Validate() error {
	var err error
	if !IsCC(c.Ticker) {
		err = errors.Append(err, errors.Wrapf(errors.ErrCurrency, "invalid currency: %s", c.Ticker))
	}
	if c.Whole < -MaxInt || c.Whole > MaxInt {
		err = errors.Append(err, errors.ErrOverflow)
	}
	if c.Fractional < -MaxFrac || c.Fractional > MaxFrac {
		err = errors.Append(err, errors.Wrap(errors.ErrOverflow, "fractional"))
	}
	if c.Whole != 0 && c.Fractional != 0 && (c.Whole > 0) != (c.Fractional > 0) {
		err = errors.Append(err, errors.Wrap(errors.ErrState, "mismatched sign"))
	}
	return err
}

// normalize carries fractional overflow into the whole part and aligns
// both signs.
func (c Coin) normalize() (Coin, error) {
	c.Whole += c.Fractional / FracUnit
	c.Fractional %= FracUnit
	switch {
	case c.Whole > 0 && c.Fractional < 0:
		c.Whole--
		c.Fractional += FracUnit
	case c.Whole < 0 && c.Fractional > 0:
		c.Whole++
		c.Fractional -= FracUnit
	}
	if c.Whole < -MaxInt || c.Whole > MaxInt {
		return Coin{}, errors.Wrapf(errors.ErrOverflow, "%d whole", c.Whole)
	}
	return c, nil
}

// coinWire is the protobuf view of a Coin.
type coinWire Coin

func (m *coinWire) Reset()         { *m = coinWire{} }
func (m *coinWire) String() string { return proto.CompactTextString(m) }
func (*coinWire) ProtoMessage()    {}

func (c *Coin) Marshal() ([]byte, error) {
	raw, err := proto.Marshal((*coinWire)(c))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrState, "marshal coin: %s", err)
	}
	return raw, nil
}

func (c *Coin) Unmarshal(raw []byte) error {
	if err := proto.Unmarshal(raw, (*coinWire)(c)); err != nil {
		return errors.Wrapf(errors.ErrInput, "unmarshal coin: %s", err)
	}
	return nil
}

// UnmarshalJSON accepts either the human format string or an object with
// whole, fractional and ticker fields.
func (c *Coin) UnmarshalJSON(raw []byte) error {
	var human string
	if json.Unmarshal(raw, &human) == nil {
		parsed, err := ParseHumanFormat(human)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}

	// coinWire has no UnmarshalJSON so this does not recurse.
	var obj coinWire
	if err := json.Unmarshal(raw, &obj); err != nil {
		return errors.Wrapf(errors.ErrInput, "coin: %s", err)
	}
	*c = Coin(obj)
	return nil
}

// String renders a coin in the format read by ParseHumanFormat.
func (c Coin) String() string {
	if n, err := c.normalize(); err == nil {
		c = n
	}
	var b strings.Builder
	if c.Whole == 0 && c.Fractional < 0 {
		b.WriteByte('-')
	}
	b.WriteString(strconv.FormatInt(c.Whole, 10))
	if f := c.Fractional; f != 0 {
		if f < 0 {
			f = -f
		}
		digits := strconv.FormatInt(f, 10)
		digits = strings.Repeat("0", 9-len(digits)) + digits
		b.WriteByte('.')
		b.WriteString(strings.TrimRight(digits, "0"))
	}
	if c.Ticker != "" {
		b.WriteByte(' ')
		b.WriteString(c.Ticker)
	}
	return b.String()
}

var humanFormat = regexp.MustCompile(`^(\-?)\s*(\d+)(?:\.(\d{1,9}))?\s*([A-Z]{3,4})$`)

// ParseHumanFormat reads "<whole>[.<fractional>] <ticker>", for example
// "-12.5 IOV".
func ParseHumanFormat(h string) (Coin, error) {
	m := humanFormat.FindStringSubmatch(h)
	if m == nil {
		return Coin{}, errors.Wrapf(errors.ErrInput, "invalid coin format %q", h)
	}
	whole, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return Coin{}, errors.Wrapf(errors.ErrInput, "invalid whole value: %s", err)
	}
	var fract int64
	if m[3] != "" {
		fract, err = strconv.ParseInt(m[3]+strings.Repeat("0", 9-len(m[3])), 10, 64)
		if err != nil {
			return Coin{}, errors.Wrapf(errors.ErrInput, "invalid fractional value: %s", err)
		}
	}
	if m[1] == "-" {
		whole, fract = -whole, -fract
	}
	return NewCoin(whole, fract, m[4]), nil
}
