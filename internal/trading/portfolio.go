package trading

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yourusername/quant-trader/internal/models"
)

// Portfolio is the authoritative financial ledger. All money is exact
// decimal; the invariant
//
//	available = total - sum(active stakes)
//
// with total = initial + cumulative settled P&L holds after every mutation.
// PlaceBet and SettleBet are the only mutators.
type Portfolio struct {
	mu sync.RWMutex

	initialBankroll   decimal.Decimal
	totalBankroll     decimal.Decimal
	availableBankroll decimal.Decimal
	activeBets        []*models.BettingDecision
	historicalBets    []*models.BettingDecision
	totalProfitLoss   decimal.Decimal

	roi         float64
	winRate     float64
	sharpeRatio float64
	maxDrawdown float64

	// settlement-time equity curve for drawdown computation
	equityCurve []decimal.Decimal

	lastUpdated time.Time
}

// PortfolioSummary is a consistent read-only snapshot of the ledger
type PortfolioSummary struct {
	TotalBankroll     decimal.Decimal `json:"total_bankroll"`
	AvailableBankroll decimal.Decimal `json:"available_bankroll"`
	TotalExposure     decimal.Decimal `json:"total_exposure"`
	ActiveBetsCount   int             `json:"active_bets_count"`
	TotalTrades       int             `json:"total_trades"`
	ProfitLoss        decimal.Decimal `json:"profit_loss"`
	ROI               float64         `json:"roi"`
	WinRate           float64         `json:"win_rate"`
	SharpeRatio       float64         `json:"sharpe_ratio"`
	MaxDrawdown       float64         `json:"max_drawdown"`
	LastUpdated       time.Time       `json:"last_updated"`
}

// NewPortfolio creates a portfolio holding the initial bankroll
func NewPortfolio(initialBankroll decimal.Decimal) *Portfolio {
	return &Portfolio{
		initialBankroll:   initialBankroll,
		totalBankroll:     initialBankroll,
		availableBankroll: initialBankroll,
		lastUpdated:       time.Now().UTC(),
	}
}

// PlaceBet reserves the stake and moves the bet to Placed. It fails with
// ErrInsufficientFunds if the stake exceeds the available bankroll, leaving
// the ledger untouched.
func (p *Portfolio) PlaceBet(bet *models.BettingDecision) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if bet.Stake.GreaterThan(p.availableBankroll) {
		return fmt.Errorf("%w: %s > %s", models.ErrInsufficientFunds, bet.Stake, p.availableBankroll)
	}

	p.availableBankroll = p.availableBankroll.Sub(bet.Stake)
	bet.UpdateStatus(models.BetStatusPlaced)
	p.activeBets = append(p.activeBets, bet)
	p.lastUpdated = time.Now().UTC()

	return nil
}

// SettleBet resolves one active bet: credits the payout (stake times odds on
// a win, zero on a loss), moves the bet to history, and recomputes derived
// metrics
func (p *Portfolio) SettleBet(betID uuid.UUID, won bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	index := -1
	for i, bet := range p.activeBets {
		if bet.ID == betID {
			index = i
			break
		}
	}
	if index < 0 {
		return fmt.Errorf("%w: bet %s", models.ErrNoActiveBet, betID)
	}

	bet := p.activeBets[index]
	p.activeBets = append(p.activeBets[:index], p.activeBets[index+1:]...)

	payout := decimal.Zero
	if won {
		bet.UpdateStatus(models.BetStatusWon)
		payout = bet.PotentialPayout()
	} else {
		bet.UpdateStatus(models.BetStatusLost)
	}

	p.availableBankroll = p.availableBankroll.Add(payout)
	profitLoss := payout.Sub(bet.Stake)
	p.totalProfitLoss = p.totalProfitLoss.Add(profitLoss)
	p.totalBankroll = p.initialBankroll.Add(p.totalProfitLoss)

	p.historicalBets = append(p.historicalBets, bet)
	p.equityCurve = append(p.equityCurve, p.totalBankroll)
	p.updateMetrics()

	return nil
}

// VoidBet returns the stake of an active bet without a result, e.g. on a
// cancelled match
func (p *Portfolio) VoidBet(betID uuid.UUID) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, bet := range p.activeBets {
		if bet.ID == betID {
			p.activeBets = append(p.activeBets[:i], p.activeBets[i+1:]...)
			bet.UpdateStatus(models.BetStatusVoid)
			p.availableBankroll = p.availableBankroll.Add(bet.Stake)
			p.historicalBets = append(p.historicalBets, bet)
			p.lastUpdated = time.Now().UTC()
			return nil
		}
	}
	return fmt.Errorf("%w: bet %s", models.ErrNoActiveBet, betID)
}

// ActiveBetsForMatch returns copies of the active bets on a match
func (p *Portfolio) ActiveBetsForMatch(matchID string) []models.BettingDecision {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var bets []models.BettingDecision
	for _, bet := range p.activeBets {
		if bet.MatchID == matchID {
			bets = append(bets, *bet)
		}
	}
	return bets
}

// ActiveBetCount returns the number of bets currently holding capital
func (p *Portfolio) ActiveBetCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.activeBets)
}

// AvailableBankroll returns the uncommitted bankroll
func (p *Portfolio) AvailableBankroll() decimal.Decimal {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.availableBankroll
}

// TotalExposure returns the stake held across all active bets
func (p *Portfolio) TotalExposure() decimal.Decimal {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.totalExposureLocked()
}

// MatchExposure returns the stake held on a single match
func (p *Portfolio) MatchExposure(matchID string) decimal.Decimal {
	p.mu.RLock()
	defer p.mu.RUnlock()

	exposure := decimal.Zero
	for _, bet := range p.activeBets {
		if bet.MatchID == matchID {
			exposure = exposure.Add(bet.Stake)
		}
	}
	return exposure
}

// Summary returns a consistent snapshot of the full ledger state
func (p *Portfolio) Summary() PortfolioSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return PortfolioSummary{
		TotalBankroll:     p.totalBankroll,
		AvailableBankroll: p.availableBankroll,
		TotalExposure:     p.totalExposureLocked(),
		ActiveBetsCount:   len(p.activeBets),
		TotalTrades:       len(p.activeBets) + len(p.historicalBets),
		ProfitLoss:        p.totalProfitLoss,
		ROI:               p.roi,
		WinRate:           p.winRate,
		SharpeRatio:       p.sharpeRatio,
		MaxDrawdown:       p.maxDrawdown,
		LastUpdated:       p.lastUpdated,
	}
}

func (p *Portfolio) totalExposureLocked() decimal.Decimal {
	exposure := decimal.Zero
	for _, bet := range p.activeBets {
		exposure = exposure.Add(bet.Stake)
	}
	return exposure
}

// updateMetrics recomputes ROI, win rate, Sharpe ratio and max drawdown from
// the settled history. Called with the write lock held after every
// settlement. ROI is net P&L against the total amount staked on settled bets;
// voided stakes are excluded.
func (p *Portfolio) updateMetrics() {
	p.lastUpdated = time.Now().UTC()

	if len(p.historicalBets) == 0 {
		return
	}

	won := 0
	totalStaked := decimal.Zero
	returns := make([]float64, 0, len(p.historicalBets))
	for _, bet := range p.historicalBets {
		switch bet.Status {
		case models.BetStatusWon:
			won++
			totalStaked = totalStaked.Add(bet.Stake)
			returns = append(returns, bet.Odds.InexactFloat64()-1.0)
		case models.BetStatusLost:
			totalStaked = totalStaked.Add(bet.Stake)
			returns = append(returns, -1.0)
		}
	}
	p.winRate = float64(won) / float64(len(p.historicalBets))

	if !totalStaked.IsZero() {
		p.roi = p.totalProfitLoss.Div(totalStaked).InexactFloat64()
	}

	p.sharpeRatio = sharpeRatio(returns)
	p.maxDrawdown = maxDrawdown(p.initialBankroll, p.equityCurve)
}

// sharpeRatio is mean over standard deviation of per-bet returns, zero when
// undefined
func sharpeRatio(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)

	if variance == 0 {
		return 0
	}
	return mean / math.Sqrt(variance)
}

// maxDrawdown is the largest peak-to-trough decline of the settlement-time
// equity curve, as a fraction of the peak
func maxDrawdown(initial decimal.Decimal, curve []decimal.Decimal) float64 {
	peak := initial.InexactFloat64()
	worst := 0.0
	for _, equity := range curve {
		e := equity.InexactFloat64()
		if e > peak {
			peak = e
		}
		if peak > 0 {
			drawdown := (peak - e) / peak
			if drawdown > worst {
				worst = drawdown
			}
		}
	}
	return worst
}
