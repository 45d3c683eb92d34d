package monetize

import (
	"encoding/json"
	"math"
	"unicode/utf8"

	"github.com/raine/ironsource-go/api"
	"github.com/rs/zerolog/log"
)

const (
	maxCappingLimit  = 1000
	maxPacingMinutes = 1000
	maxNameLength    = 30
	maxRewardAmount  = 2_000_000_000
)

// CappingInterval is the window a capping limit applies to.
type CappingInterval string

const (
	CappingPerDay  CappingInterval = "d"
	CappingPerHour CappingInterval = "h"
)

// Capping limits how many ads a placement shows per interval.
type Capping struct {
	Enabled  bool
	Limit    int
	Interval CappingInterval
}

// NewCapping validates the interval and clamps limit to 1000.
func NewCapping(limit int, interval CappingInterval, enabled bool) (*Capping, error) {
	c := &Capping{Enabled: enabled, Limit: limit, Interval: interval}
	if err := c.normalize(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Capping) normalize() error {
	if c.Limit > maxCappingLimit {
		log.Warn().Int("limit", c.Limit).Msg("capping limit is greater than 1000, it will be reduced to 1000")
		c.Limit = maxCappingLimit
	}
	if c.Interval != CappingPerDay && c.Interval != CappingPerHour {
		return api.Validationf("cappingInterval", "interval must be `d` for days or `h` for hours, got %q", c.Interval)
	}
	return nil
}

func (c Capping) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Enabled  int             `json:"enabled"`
		Limit    int             `json:"cappingLimit"`
		Interval CappingInterval `json:"cappingInterval"`
	}{boolInt(c.Enabled), c.Limit, c.Interval})
}

// Pacing sets the minimum gap between two ads of a placement.
type Pacing struct {
	Enabled bool
	Minutes float64
}

// NewPacing clamps minutes to 1000.
func NewPacing(minutes float64, enabled bool) *Pacing {
	p := &Pacing{Enabled: enabled, Minutes: minutes}
	p.normalize()
	return p
}

func (p *Pacing) normalize() {
	if p.Minutes > maxPacingMinutes {
		log.Warn().Float64("minutes", p.Minutes).Msg("pacing minutes is greater than 1000, it will be reduced to 1000")
		p.Minutes = maxPacingMinutes
	}
}

func (p Pacing) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Enabled int     `json:"enabled"`
		Minutes float64 `json:"pacingMinutes"`
	}{boolInt(p.Enabled), p.Minutes})
}

// Placement is an ad placement of an app. Name is required when adding and
// ID when updating. ItemName and RewardAmount only apply to rewarded video.
type Placement struct {
	AdUnit       AdUnit
	AdDelivery   bool
	Name         string
	ID           int
	ItemName     string
	RewardAmount float64
	Capping      *Capping
	Pacing       *Pacing
}

// NewPlacement returns a validated copy of p with over-long or out of range
// values trimmed.
func NewPlacement(p Placement) (*Placement, error) {
	out := p
	if p.Capping != nil {
		c := *p.Capping
		out.Capping = &c
	}
	if p.Pacing != nil {
		pc := *p.Pacing
		out.Pacing = &pc
	}
	if err := out.normalize(); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *Placement) normalize() error {
	switch p.AdUnit {
	case RewardedVideo, Interstitial, Banner:
	default:
		return api.Validationf("adUnit", "ad unit must be rewardedVideo, interstitial or banner, got %q", p.AdUnit)
	}

	if utf8.RuneCountInString(p.Name) > maxNameLength {
		log.Warn().Str("name", p.Name).Msg("placement name is longer than 30 chars, it will be trimmed")
		p.Name = truncate(p.Name, maxNameLength)
	}

	if p.AdUnit == RewardedVideo && p.ItemName == "" && p.RewardAmount == 0 && p.ID == 0 {
		return api.Validationf("itemName", "item name or reward amount is required for rewarded video placements")
	}

	if utf8.RuneCountInString(p.ItemName) > maxNameLength {
		log.Warn().Str("itemName", p.ItemName).Msg("item name is longer than 30 chars, it will be trimmed")
		p.ItemName = truncate(p.ItemName, maxNameLength)
	}

	if p.RewardAmount > maxRewardAmount {
		log.Warn().Float64("rewardAmount", p.RewardAmount).Msg("reward amount is greater than 2000000000, it will be reduced")
		p.RewardAmount = maxRewardAmount
	}
	if p.RewardAmount != math.Trunc(p.RewardAmount) {
		log.Warn().Float64("rewardAmount", p.RewardAmount).Msg("reward amount should be an integer, it will be rounded")
		p.RewardAmount = math.Round(p.RewardAmount)
	}

	if p.Capping != nil {
		if err := p.Capping.normalize(); err != nil {
			return err
		}
	}
	if p.Pacing != nil {
		p.Pacing.normalize()
	}
	return nil
}

type placementWire struct {
	AdUnit       AdUnit   `json:"adUnit"`
	AdDelivery   int      `json:"adDelivery"`
	ID           int      `json:"id,omitempty"`
	Name         string   `json:"name,omitempty"`
	ItemName     string   `json:"itemName,omitempty"`
	RewardAmount int64    `json:"rewardAmount,omitempty"`
	Capping      *Capping `json:"capping,omitempty"`
	Pacing       *Pacing  `json:"pacing,omitempty"`
}

func (p Placement) MarshalJSON() ([]byte, error) {
	w := placementWire{
		AdUnit:     p.AdUnit,
		AdDelivery: boolInt(p.AdDelivery),
		ID:         p.ID,
		Name:       p.Name,
		Capping:    p.Capping,
		Pacing:     p.Pacing,
	}
	if p.AdUnit == RewardedVideo {
		w.ItemName = p.ItemName
		w.RewardAmount = int64(p.RewardAmount)
	}
	return json.Marshal(w)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
