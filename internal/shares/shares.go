// Package shares derives display figures from raw contract share counts.
// All raw counts use 8-decimal fixed point: 100_000_000 == 100%.
package shares

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/bigincgenesis/bigcli/internal/config"
	"github.com/ethereum/go-ethereum/common"
)

// ErrNegativeTeamShare reports contract state where available + sold
// exceeds 100%. The figure is shown as-is, never clamped.
var ErrNegativeTeamShare = errors.New("team share is negative: available + sold exceeds 100%")

// Figures are the derived share fractions (1.0 == 100%).
type Figures struct {
	AvailableShare    float64
	UserShare         float64
	SoldShare         float64
	TeamShare         float64
	TotalShareholders int
	Shareholders      []common.Address

	// Team is the raw team count; negative when the contract is inconsistent.
	Team *big.Int
}

// Derive computes Figures. Nil counts are treated as zero. The team share is
// whatever remains of 100% after available and sold shares.
func Derive(available, user, sold *big.Int, holders []common.Address) Figures {
	available, user, sold = orZero(available), orZero(user), orZero(sold)

	team := new(big.Int).Sub(config.SharePrecision, available)
	team.Sub(team, sold)

	if holders == nil {
		holders = []common.Address{}
	}
	return Figures{
		AvailableShare:    fraction(available),
		UserShare:         fraction(user),
		SoldShare:         fraction(sold),
		TeamShare:         fraction(team),
		TotalShareholders: len(holders),
		Shareholders:      holders,
		Team:              team,
	}
}

// IntegrityWarning returns ErrNegativeTeamShare when the contract reports
// more than 100% as available or sold.
func (f Figures) IntegrityWarning() error {
	if f.Team != nil && f.Team.Sign() < 0 {
		return fmt.Errorf("%w (team %s)", ErrNegativeTeamShare, Percent4(f.TeamShare))
	}
	return nil
}

// Slice is one segment of the ownership chart.
type Slice struct {
	Label string
	Value float64
	Color string
}

// Chart colours, in slice order.
const (
	ColorYours     = "#506AE9"
	ColorAvailable = "#9FA4AE"
	ColorSold      = "#7BB274"
	ColorTeam      = "#F59E0B"
)

// Slices returns the chart segments with zero or negative values dropped.
func (f Figures) Slices() []Slice {
	all := []Slice{
		{Label: "Your Shares", Value: f.UserShare, Color: ColorYours},
		{Label: "Available Shares", Value: f.AvailableShare, Color: ColorAvailable},
		{Label: "Sold Shares", Value: f.SoldShare, Color: ColorSold},
		{Label: "Team Shares", Value: f.TeamShare, Color: ColorTeam},
	}
	out := all[:0]
	for _, s := range all {
		if s.Value > 0 {
			out = append(out, s)
		}
	}
	return out
}

// Percent4 formats a fraction as a percentage with four decimals ("20.0000%").
func Percent4(x float64) string {
	return fmt.Sprintf("%.4f%%", x*100)
}

// Percent2 formats a fraction as a percentage with two decimals ("20.00%").
func Percent2(x float64) string {
	return fmt.Sprintf("%.2f%%", x*100)
}

func fraction(n *big.Int) float64 {
	f, _ := new(big.Rat).SetFrac(n, config.SharePrecision).Float64()
	return f
}

func orZero(n *big.Int) *big.Int {
	if n == nil {
		return new(big.Int)
	}
	return n
}
