package monetize

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/raine/ironsource-go/api"
	"github.com/rs/zerolog/log"
)

// TierType is the selection strategy of a mediation group tier.
type TierType string

const (
	TierManual    TierType = "manual"
	TierSortByCPM TierType = "sortByCpm"
	TierOptimized TierType = "optimized"
	TierBidders   TierType = "bidding"
)

// MaxTiers is the number of ordered tier slots in a mediation group.
const MaxTiers = 3

// TierInstance is a reference to a configured instance within a tier.
type TierInstance struct {
	Network    Network `json:"providerName"`
	InstanceID int     `json:"instanceId"`
	Rate       float64 `json:"rate,omitempty"`
	Capping    int     `json:"capping,omitempty"`

	// position is the requested manual-tier position, nil when none was given.
	position *int
}

func (i TierInstance) sameAs(other TierInstance) bool {
	return i.Network == other.Network && i.InstanceID == other.InstanceID
}

type tierEntryOpts struct {
	rate     float64
	capping  int
	position *int
}

// TierOption customizes an instance added with Tier.AddInstance.
type TierOption func(*tierEntryOpts)

// WithRate overrides the instance's CPM in this tier. Zero means no override.
func WithRate(rate float64) TierOption {
	return func(o *tierEntryOpts) { o.rate = rate }
}

// WithCapping caps the instance's impressions per session.
func WithCapping(capping int) TierOption {
	return func(o *tierEntryOpts) { o.capping = capping }
}

// AtPosition places the instance at a waterfall position. Only manual tiers
// honor it; positions past the end append.
func AtPosition(position int) TierOption {
	return func(o *tierEntryOpts) { o.position = &position }
}

// Tier is one ranked bucket of instances in a mediation group.
type Tier struct {
	tierType  TierType
	instances []TierInstance
}

func NewTier(tierType TierType) *Tier {
	return &Tier{tierType: tierType}
}

func (t *Tier) Type() TierType {
	return t.tierType
}

// Instances returns a copy of the tier's instance list.
func (t *Tier) Instances() []TierInstance {
	return slices.Clone(t.instances)
}

func (t *Tier) Len() int {
	return len(t.instances)
}

func (t *Tier) indexOf(network Network, instanceID int) int {
	return slices.IndexFunc(t.instances, func(i TierInstance) bool {
		return i.Network == network && i.InstanceID == instanceID
	})
}

// AddInstance adds an instance to the tier and reports whether it was added.
//
// Non-manual tiers hold each (network, instance) pair once. Manual tiers may
// repeat a pair at different positions but ignore an exact repeat of
// (network, instance, position).
func (t *Tier) AddInstance(network Network, instanceID int, opts ...TierOption) bool {
	var o tierEntryOpts
	for _, opt := range opts {
		opt(&o)
	}

	entry := TierInstance{
		Network:    network,
		InstanceID: instanceID,
		Rate:       o.rate,
		Capping:    o.capping,
	}

	if t.tierType != TierManual {
		if t.indexOf(network, instanceID) >= 0 {
			log.Warn().
				Str("network", string(network)).
				Int("instanceId", instanceID).
				Msg("instance already exists in the tier")
			return false
		}
		t.instances = append(t.instances, entry)
		return true
	}

	if o.position == nil {
		t.instances = append(t.instances, entry)
		return true
	}

	requested := *o.position
	entry.position = &requested
	if slices.ContainsFunc(t.instances, func(i TierInstance) bool {
		return i.sameAs(entry) && i.position != nil && *i.position == requested
	}) {
		log.Warn().
			Str("network", string(network)).
			Int("instanceId", instanceID).
			Int("position", requested).
			Msg("instance already exists in the tier at the same position")
		return false
	}
	pos := min(max(requested, 0), len(t.instances))
	t.instances = slices.Insert(t.instances, pos, entry)
	return true
}

// RemoveInstance removes the first entry matching network and instanceID.
// Removing an instance that is not in the tier does nothing.
func (t *Tier) RemoveInstance(network Network, instanceID int) bool {
	idx := t.indexOf(network, instanceID)
	if idx < 0 {
		return false
	}
	t.instances = slices.Delete(t.instances, idx, idx+1)
	return true
}

func (t *Tier) clone() *Tier {
	return &Tier{tierType: t.tierType, instances: slices.Clone(t.instances)}
}

// overlap returns the entries of t whose (network, instance) pair also
// appears in other.
func (t *Tier) overlap(other *Tier) []TierInstance {
	var out []TierInstance
	for _, a := range t.instances {
		if slices.ContainsFunc(out, a.sameAs) {
			continue
		}
		if slices.ContainsFunc(other.instances, a.sameAs) {
			out = append(out, a)
		}
	}
	return out
}

type tierWire struct {
	Instances []TierInstance `json:"instances"`
	TierType  TierType       `json:"tierType"`
}

func (t *Tier) MarshalJSON() ([]byte, error) {
	instances := t.instances
	if instances == nil {
		instances = []TierInstance{}
	}
	return json.Marshal(tierWire{Instances: instances, TierType: t.tierType})
}

// Priority is the tier layout of a mediation group: three ordered slots and
// a bidding slot. Tiers are copied on attach, so later changes to a Tier
// value do not affect the group.
type Priority struct {
	tiers   [MaxTiers]*Tier
	bidders *Tier
}

func NewPriority() *Priority {
	return &Priority{}
}

// SetTier attaches tier at position (0-2). A bidding tier always goes into
// the bidding slot and position is ignored. The tier is rejected, leaving the
// group unchanged, if it shares an instance with another ordered tier.
func (p *Priority) SetTier(tier *Tier, position int) error {
	if tier == nil {
		return api.Configurationf("tier is nil")
	}

	if tier.Type() == TierBidders {
		if p.bidders != nil {
			log.Warn().Msg("replacing bidders tier")
		}
		p.bidders = tier.clone()
		return nil
	}

	if position < 0 || position >= MaxTiers {
		return api.Configurationf("max number of tiers is %d, position must be between 0-%d, got %d", MaxTiers, MaxTiers-1, position)
	}

	for i, existing := range p.tiers {
		if i == position || existing == nil {
			continue
		}
		if dup := existing.overlap(tier); len(dup) > 0 {
			return api.Configurationf("some instances overlap between tiers: tier %d with instances %s", i+1, describeInstances(dup))
		}
	}

	p.tiers[position] = tier.clone()
	return nil
}

// describeInstances renders instance references without rate or capping.
func describeInstances(instances []TierInstance) string {
	refs := make([]map[string]any, 0, len(instances))
	for _, i := range instances {
		refs = append(refs, map[string]any{
			"instanceId":   i.InstanceID,
			"providerName": i.Network,
		})
	}
	b, _ := json.Marshal(refs)
	return string(b)
}

// RemoveTier empties the slot at position. Emptying a slot that is already
// empty only logs a warning.
func (p *Priority) RemoveTier(position int) error {
	if position < 0 || position >= MaxTiers {
		return api.Configurationf("position must be between 0-%d, got %d", MaxTiers-1, position)
	}
	if p.tiers[position] == nil {
		log.Warn().Msgf("tier%d is empty", position+1)
	}
	p.tiers[position] = nil
	return nil
}

// RemoveBidders empties the bidding slot.
func (p *Priority) RemoveBidders() {
	if p.bidders == nil {
		log.Warn().Msg("bidders tier is empty")
		return
	}
	p.bidders = nil
}

// Tier returns a copy of the tier at position, or nil if the slot is empty.
func (p *Priority) Tier(position int) *Tier {
	if position < 0 || position >= MaxTiers || p.tiers[position] == nil {
		return nil
	}
	return p.tiers[position].clone()
}

// Bidders returns a copy of the bidding tier, or nil.
func (p *Priority) Bidders() *Tier {
	if p.bidders == nil {
		return nil
	}
	return p.bidders.clone()
}

// hasOptimized reports whether any ordered slot holds an optimized tier.
func (p *Priority) hasOptimized() bool {
	for _, t := range p.tiers {
		if t != nil && t.Type() == TierOptimized {
			return true
		}
	}
	return false
}

// validate checks constraints that span the whole layout.
func (p *Priority) validate() error {
	if p.bidders != nil && p.hasOptimized() {
		return api.Configurationf("a group with a bidding tier cannot have an optimized tier")
	}
	return nil
}

// MarshalJSON emits the bidding slot and each occupied ordered slot keyed by
// its position. Empty slots are omitted.
func (p *Priority) MarshalJSON() ([]byte, error) {
	out := make(map[string]*Tier, MaxTiers+1)
	if p.bidders != nil {
		out["bidding"] = p.bidders
	}
	for i, t := range p.tiers {
		if t != nil {
			out[tierKey(i)] = t
		}
	}
	return json.Marshal(out)
}

func tierKey(position int) string {
	return fmt.Sprintf("tier%d", position+1)
}
