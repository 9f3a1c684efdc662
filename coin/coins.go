package coin

import (
	"sort"

	"github.com/iov-one/tradeweave/errors"
)

// Coins is a wallet holding. In its normalized form it is sorted by
// ticker, holds at most one coin per ticker and no zero amounts. All
// methods keep that form.
type Coins []*Coin

// CombineCoins builds a normalized Coins from any list of coins.
func CombineCoins(cs ...Coin) (Coins, error) {
	res := make(Coins, 0, len(cs))
	for _, c := range cs {
		var err error
		if res, err = res.Add(c); err != nil {
			return nil, err
		}
	}
	if err := res.Validate(); err != nil {
		return nil, err
	}
	return res, nil
}

// Clone returns a deep copy.
func (cs Coins) Clone() Coins {
	if cs == nil {
		return nil
	}
	res := make(Coins, len(cs))
	for i, c := range cs {
		res[i] = c.Clone()
	}
	return res
}

// Add increases the holding of c's ticker. The receiver may be modified,
// always use the returned value.
func (cs Coins) Add(c Coin) (Coins, error) {
	if c.IsZero() {
		return cs, nil
	}
	has, i := cs.findCoin(c.ID())
	if has == nil {
		cs = append(cs, nil)
		copy(cs[i+1:], cs[i:])
		cs[i] = &c
		return cs, nil
	}
	sum, err := has.Add(c)
	if err != nil {
		return nil, err
	}
	if sum.IsZero() {
		return append(cs[:i], cs[i+1:]...), nil
	}
	cs[i] = &sum
	return cs, nil
}

// Subtract decreases the holding of c's ticker. The result may hold
// negative amounts.
func (cs Coins) Subtract(c Coin) (Coins, error) {
	return cs.Add(c.Negative())
}

// Combine returns the sum of both holdings, leaving the receiver intact.
func (cs Coins) Combine(o Coins) (Coins, error) {
	res := cs.Clone()
	for _, c := range o {
		var err error
		if res, err = res.Add(*c); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Contains is true when subtracting c leaves no negative amount.
func (cs Coins) Contains(c Coin) bool {
	if c.IsZero() {
		return true
	}
	has, _ := cs.findCoin(c.ID())
	return has != nil && has.Compare(c) >= 0
}

// Balance returns the holding of ticker, a zero coin when absent.
func (cs Coins) Balance(ticker string) Coin {
	if has, _ := cs.findCoin(ticker); has != nil {
		return *has
	}
	return NewCoin(0, 0, ticker)
}

// findCoin returns the coin with the given ticker and its position. When
// absent the coin is nil and the position is where it would be inserted.
func (cs Coins) findCoin(ticker string) (*Coin, int) {
	i := sort.Search(len(cs), func(i int) bool { return cs[i].Ticker >= ticker })
	if i < len(cs) && cs[i].Ticker == ticker {
		return cs[i], i
	}
	return nil, i
}

func (cs Coins) IsEmpty() bool {
	return len(cs) == 0
}

// IsPositive is true for a non empty holding of positive amounts only.
func (cs Coins) IsPositive() bool {
	return !cs.IsEmpty() && cs.IsNonNegative()
}

// IsNonNegative is true when no amount is below zero. Zero amounts are
// never stored, so every coin must be positive.
func (cs Coins) IsNonNegative() bool {
	for _, c := range cs {
		if !c.IsPositive() {
			return false
		}
	}
	return true
}

func (cs Coins) Equals(o Coins) bool {
	if len(cs) != len(o) {
		return false
	}
	for i := range cs {
		if !cs[i].Equals(*o[i]) {
			return false
		}
	}
	return true
}

// Count returns the number of tickers held.
func (cs Coins) Count() int {
	return len(cs)
}

// Validate checks every coin and that the set is normalized.
func (cs Coins) Validate() error {
	var err error
	for i, c := range cs {
		if c == nil {
			err = errors.Append(err, errors.Wrap(errors.ErrEmpty, "nil coin"))
			continue
		}
		err = errors.Append(err, errors.Wrap(c.Validate(), "coin"))
		if c.IsZero() {
			err = errors.Append(err, errors.Wrap(errors.ErrState, "zero coins"))
		}
		if i > 0 && cs[i-1] != nil && cs[i-1].Ticker >= c.Ticker {
			err = errors.Append(err, errors.Wrap(errors.ErrState, "not sorted"))
		}
	}
	return err
}
