package promote

import (
	"encoding/json"
	"slices"

	"github.com/raine/ironsource-go/api"
)

// UsageType is the slot an asset fills within a creative.
type UsageType string

const (
	UsageVideo              UsageType = "video"
	UsageLeft               UsageType = "left"
	UsageMiddle             UsageType = "middle"
	UsageRight              UsageType = "right"
	UsageInteractiveEndCard UsageType = "interactiveEndCard"
	UsagePhonePortrait      UsageType = "phonePortrait"
	UsagePhoneLandscape     UsageType = "phoneLandscape"
	UsageTabletPortrait     UsageType = "tabletPortrait"
	UsageTabletLandscape    UsageType = "tabletLandscape"
)

// CreativeType is a creative layout.
type CreativeType string

const (
	VideoAndCarousel           CreativeType = "videoAndCarousel"
	VideoAndInteractiveEndCard CreativeType = "videoAndInteractiveEndCard"
	VideoAndFullScreen         CreativeType = "videoAndFullScreen"
)

type usageRules struct {
	mandatory []UsageType
	optional  []UsageType
}

var creativeUsage = map[CreativeType]usageRules{
	VideoAndCarousel: {
		mandatory: []UsageType{UsageVideo, UsageLeft, UsageMiddle, UsageRight},
	},
	VideoAndInteractiveEndCard: {
		mandatory: []UsageType{UsageVideo, UsageInteractiveEndCard},
	},
	VideoAndFullScreen: {
		mandatory: []UsageType{UsageVideo, UsagePhonePortrait, UsagePhoneLandscape},
		optional:  []UsageType{UsageTabletPortrait, UsageTabletLandscape},
	},
}

// CreativeAsset places an uploaded asset in a creative slot.
type CreativeAsset struct {
	ID        int       `json:"id"`
	UsageType UsageType `json:"usageType"`
}

// Creative is a creative to be created for a title.
type Creative struct {
	Name     string          `json:"name"`
	Type     CreativeType    `json:"type" validate:"required,oneof=videoAndCarousel videoAndInteractiveEndCard videoAndFullScreen"`
	Language string          `json:"language" validate:"len=2"`
	Assets   []CreativeAsset `json:"assets"`
}

// NewCreative checks the language code and that every asset suits the
// creative type. Completeness is checked by Validate.
func NewCreative(name string, creativeType CreativeType, language string, assets ...CreativeAsset) (*Creative, error) {
	c := &Creative{Name: name, Type: creativeType, Language: language}
	if err := api.ValidateStruct(c); err != nil {
		return nil, err
	}
	for _, a := range assets {
		if err := c.AddAsset(a); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// AddAsset appends asset if its usage type is allowed for the creative type.
func (c *Creative) AddAsset(asset CreativeAsset) error {
	if !c.compatible(asset.UsageType) {
		return api.Validationf("assets", "asset usage type %s is not compatible with creative type %s", asset.UsageType, c.Type)
	}
	c.Assets = append(c.Assets, asset)
	return nil
}

func (c *Creative) compatible(u UsageType) bool {
	rules := creativeUsage[c.Type]
	return slices.Contains(rules.mandatory, u) || slices.Contains(rules.optional, u)
}

// Validate checks that every mandatory slot is filled and that no slot is
// used twice.
func (c *Creative) Validate() error {
	if err := api.ValidateStruct(c); err != nil {
		return err
	}
	rules := creativeUsage[c.Type]

	used := make(map[UsageType]bool, len(c.Assets))
	for _, a := range c.Assets {
		if !c.compatible(a.UsageType) {
			return api.Validationf("assets", "asset usage type %s is not compatible with creative type %s", a.UsageType, c.Type)
		}
		if used[a.UsageType] {
			return api.Validationf("assets", "usage type %s for creative type %s has already been used", a.UsageType, c.Type)
		}
		used[a.UsageType] = true
	}

	var missing []UsageType
	for _, u := range rules.mandatory {
		if !used[u] {
			missing = append(missing, u)
		}
	}
	if len(missing) > 0 {
		return api.Validationf("assets", "creative %q of type %s is missing mandatory assets with usage types %v", c.Name, c.Type, missing)
	}
	return nil
}

func (c *Creative) MarshalJSON() ([]byte, error) {
	assets := c.Assets
	if assets == nil {
		assets = []CreativeAsset{}
	}
	return json.Marshal(struct {
		Name     string          `json:"name"`
		Type     CreativeType    `json:"type"`
		Language string          `json:"language"`
		Assets   []CreativeAsset `json:"assets"`
	}{c.Name, c.Type, c.Language, assets})
}

// AssetType is the media type of an uploaded asset.
type AssetType string

const (
	AssetImage   AssetType = "image"
	AssetVideo   AssetType = "video"
	AssetHTML    AssetType = "html"
	AssetHTMLIEC AssetType = "html_iec"
)

func checkAssetType(t AssetType, allowed ...AssetType) error {
	if slices.Contains(allowed, t) {
		return nil
	}
	return api.Validationf("type", "asset type must be one of %v, not %q", allowed, t)
}
