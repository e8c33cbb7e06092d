package marketmaker

import (
	"context"
	"fmt"

	"github.com/erain9/matchingo/pkg/core"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	two     = decimal.NewFromInt(2)
)

// LayeredSymmetricQuoting places NumLevels bids and asks symmetrically
// around the reference price. Level i sits half the base spread plus
// (i-1) price steps away from the reference.
type LayeredSymmetricQuoting struct {
	cfg    *Config
	logger zerolog.Logger
}

// NewLayeredSymmetricQuoting creates a new LayeredSymmetricQuoting strategy
func NewLayeredSymmetricQuoting(cfg *Config, logger zerolog.Logger) *LayeredSymmetricQuoting {
	return &LayeredSymmetricQuoting{
		cfg:    cfg,
		logger: logger.With().Str("component", "LayeredSymmetricQuoting").Logger(),
	}
}

// Quotes implements Strategy. Bids round down and asks round up to the
// configured price scale so rounding never narrows the spread.
func (s *LayeredSymmetricQuoting) Quotes(ctx context.Context, reference decimal.Decimal) ([]Quote, error) {
	if !reference.IsPositive() {
		return nil, fmt.Errorf("reference price must be positive, got %s", reference)
	}

	halfSpread := reference.Mul(s.cfg.BaseSpreadPercent).Div(two).Div(hundred)
	step := reference.Mul(s.cfg.PriceStepPercent).Div(hundred)

	quotes := make([]Quote, 0, s.cfg.NumLevels*2)
	for i := 0; i < s.cfg.NumLevels; i++ {
		offset := halfSpread.Add(step.Mul(decimal.NewFromInt(int64(i))))
		bid := reference.Sub(offset).RoundFloor(s.cfg.PriceScale)
		ask := reference.Add(offset).RoundCeil(s.cfg.PriceScale)

		if bid.IsPositive() {
			quotes = append(quotes, Quote{Side: core.Buy, Price: bid, Quantity: s.cfg.OrderSize})
		}
		quotes = append(quotes, Quote{Side: core.Sell, Price: ask, Quantity: s.cfg.OrderSize})

		s.logger.Debug().
			Int("level", i+1).
			Str("bid_price", bid.String()).
			Str("ask_price", ask.String()).
			Str("quantity", s.cfg.OrderSize.String()).
			Msg("Calculated quote pair")
	}

	return quotes, nil
}
