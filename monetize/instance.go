package monetize

import (
	"slices"

	"github.com/raine/ironsource-go/api"
)

// InstanceStatus toggles an instance on or off. The empty value is active.
type InstanceStatus string

const (
	InstanceActive   InstanceStatus = "active"
	InstanceInactive InstanceStatus = "inactive"
)

// Instance is one ad network integration for one ad unit of an app. The
// network specific settings live in Config, whose concrete type must match
// Network.
type Instance struct {
	Network Network
	Name    string
	AdUnit  AdUnit
	Status  InstanceStatus
	// ID is required when updating and ignored when adding.
	ID int
	// Rate overrides the instance's CPM. Not supported by ironSource instances.
	Rate   float64
	Config NetworkConfig
}

// NewInstance builds and validates an active instance.
func NewInstance(network Network, name string, adUnit AdUnit, cfg NetworkConfig) (*Instance, error) {
	inst := &Instance{
		Network: network,
		Name:    name,
		AdUnit:  adUnit,
		Status:  InstanceActive,
		Config:  cfg,
	}
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	return inst, nil
}

// Validate checks that the instance can be sent to the API.
func (i *Instance) Validate() error {
	if i.Name == "" {
		return api.Validationf("instanceName", "instance name is required")
	}
	if i.AdUnit == "" {
		return api.Validationf("adUnit", "ad unit is required")
	}
	if i.Config == nil {
		return api.Configurationf("instance %q has no network config", i.Name)
	}
	if !slices.Contains(i.Config.networks(), i.Network) {
		return api.Configurationf("%T cannot configure a %s instance", i.Config, i.Network)
	}
	if i.Rate != 0 && !i.Config.rated() {
		return api.Configurationf("%s instances do not support a rate", i.Network)
	}
	switch i.Status {
	case "", InstanceActive, InstanceInactive:
	default:
		return api.Validationf("status", "unknown instance status %q", i.Status)
	}
	return nil
}

func (i *Instance) wire(withID bool) map[string]any {
	status := i.Status
	if status == "" {
		status = InstanceActive
	}
	obj := map[string]any{
		"instanceName": i.Name,
		"status":       status,
	}
	if i.Rate != 0 {
		obj["rate"] = i.Rate
	}
	for k, v := range i.Config.fields() {
		obj[k] = v
	}
	if withID && i.ID > 0 {
		obj["instanceId"] = i.ID
	}
	return obj
}

// instancesBody groups instances by network and ad unit. The app config of
// a network is taken from its first instance.
func instancesBody(appKey string, instances []*Instance, withID bool) (map[string]any, error) {
	configurations := make(map[string]map[string]any)
	for _, inst := range instances {
		if inst == nil {
			return nil, api.Configurationf("nil instance")
		}
		if err := inst.Validate(); err != nil {
			return nil, err
		}

		network := string(inst.Network)
		conf, ok := configurations[network]
		if !ok {
			conf = make(map[string]any)
			if appConfig := inst.Config.appConfig(); len(appConfig) > 0 {
				conf["appConfig"] = appConfig
			}
			configurations[network] = conf
		}

		adUnit := string(inst.AdUnit)
		list, _ := conf[adUnit].([]map[string]any)
		conf[adUnit] = append(list, inst.wire(withID))
	}

	return map[string]any{
		"appKey":         appKey,
		"configurations": configurations,
	}, nil
}

// NetworkConfig holds the network specific part of an instance. Each
// implementation covers one network or a network and its bidding variant.
type NetworkConfig interface {
	networks() []Network
	appConfig() map[string]string
	fields() map[string]any
	rated() bool
}

// rateable is embedded by every config that accepts a rate override.
type rateable struct{}

func (rateable) rated() bool { return true }

// Pricing sets an eCPM for a list of countries.
type Pricing struct {
	ECPM      float64  `json:"eCPM"`
	Countries []string `json:"country"`
}

// IronSourceConfig configures ironSource and ironSource bidding instances.
type IronSourceConfig struct {
	Pricing []Pricing
}

func (IronSourceConfig) networks() []Network          { return []Network{IronSource, IronSourceBidding} }
func (IronSourceConfig) appConfig() map[string]string { return nil }
func (IronSourceConfig) rated() bool                  { return false }
func (c IronSourceConfig) fields() map[string]any {
	if len(c.Pricing) == 0 {
		return nil
	}
	return map[string]any{"pricing": c.Pricing}
}

// AdColonyConfig configures AdColony and AdColony bidding instances.
type AdColonyConfig struct {
	rateable
	AppID  string
	ZoneID string
}

func (AdColonyConfig) networks() []Network            { return []Network{AdColony, AdColonyBidding} }
func (c AdColonyConfig) appConfig() map[string]string { return map[string]string{"appID": c.AppID} }
func (c AdColonyConfig) fields() map[string]any       { return map[string]any{"zoneId": c.ZoneID} }

// AdMobConfig configures AdMob and Google Ad Manager instances.
type AdMobConfig struct {
	rateable
	AppID    string
	AdUnitID string
}

func (AdMobConfig) networks() []Network            { return []Network{AdMob, AdManager} }
func (c AdMobConfig) appConfig() map[string]string { return map[string]string{"appId": c.AppID} }
func (c AdMobConfig) fields() map[string]any       { return map[string]any{"adUnitId": c.AdUnitID} }

type AmazonConfig struct {
	rateable
	AppKey string
	EC     string
}

func (AmazonConfig) networks() []Network            { return []Network{Amazon} }
func (c AmazonConfig) appConfig() map[string]string { return map[string]string{"appKey": c.AppKey} }
func (c AmazonConfig) fields() map[string]any       { return map[string]any{"ec": c.EC} }

type AppLovinConfig struct {
	rateable
	SDKKey string
	ZoneID string
}

func (AppLovinConfig) networks() []Network            { return []Network{AppLovin} }
func (c AppLovinConfig) appConfig() map[string]string { return map[string]string{"sdkKey": c.SDKKey} }
func (c AppLovinConfig) fields() map[string]any       { return map[string]any{"zone_id": c.ZoneID} }

type ChartboostConfig struct {
	rateable
	AppID        string
	AppSignature string
	AdLocation   string
}

func (ChartboostConfig) networks() []Network { return []Network{Chartboost} }
func (c ChartboostConfig) appConfig() map[string]string {
	return map[string]string{"appId": c.AppID, "appSignature": c.AppSignature}
}
func (c ChartboostConfig) fields() map[string]any { return map[string]any{"adLocation": c.AdLocation} }

// TrafficConfig configures cross promotion bidding and direct deals
// instances, which have no app level settings.
type TrafficConfig struct {
	rateable
	TrafficID string
}

func (TrafficConfig) networks() []Network          { return []Network{CrossPromotionBidding, DirectDeals} }
func (TrafficConfig) appConfig() map[string]string { return nil }
func (c TrafficConfig) fields() map[string]any     { return map[string]any{"traffic_id": c.TrafficID} }

type CSJConfig struct {
	rateable
	AppID  string
	SlotID string
}

func (CSJConfig) networks() []Network            { return []Network{CSJ} }
func (c CSJConfig) appConfig() map[string]string { return map[string]string{"appID": c.AppID} }
func (c CSJConfig) fields() map[string]any       { return map[string]any{"slot_id": c.SlotID} }

// FacebookConfig configures Meta Audience Network and its bidding variant.
type FacebookConfig struct {
	rateable
	AppID           string
	UserAccessToken string
	PlacementID     string
}

func (FacebookConfig) networks() []Network { return []Network{Facebook, FacebookBidding} }
func (c FacebookConfig) appConfig() map[string]string {
	return map[string]string{"appId": c.AppID, "userAccessToken": c.UserAccessToken}
}
func (c FacebookConfig) fields() map[string]any { return map[string]any{"placement_id": c.PlacementID} }

type FyberConfig struct {
	rateable
	AppID     string
	AdSpotID  string
	ContentID string
}

func (FyberConfig) networks() []Network            { return []Network{Fyber} }
func (c FyberConfig) appConfig() map[string]string { return map[string]string{"appId": c.AppID} }

// The API expects the misspelled adSoptId key.
func (c FyberConfig) fields() map[string]any {
	return map[string]any{"adSoptId": c.AdSpotID, "contentId": c.ContentID}
}

type HyprMXConfig struct {
	rateable
	DistributorID string
	PlacementID   string
}

func (HyprMXConfig) networks() []Network { return []Network{HyprMX} }
func (c HyprMXConfig) appConfig() map[string]string {
	return map[string]string{"distributorId": c.DistributorID}
}
func (c HyprMXConfig) fields() map[string]any { return map[string]any{"placementId": c.PlacementID} }

type InMobiConfig struct {
	rateable
	PlacementID string
}

func (InMobiConfig) networks() []Network          { return []Network{InMobi, InMobiBidding} }
func (InMobiConfig) appConfig() map[string]string { return nil }
func (c InMobiConfig) fields() map[string]any     { return map[string]any{"placementId": c.PlacementID} }

type LiftoffConfig struct {
	rateable
	AppID    string
	AdUnitID string
}

func (LiftoffConfig) networks() []Network            { return []Network{Liftoff} }
func (c LiftoffConfig) appConfig() map[string]string { return map[string]string{"appId": c.AppID} }
func (c LiftoffConfig) fields() map[string]any       { return map[string]any{"adUnitId": c.AdUnitID} }

type MaioConfig struct {
	rateable
	AppID   string
	ZoneID  string
	MediaID string
}

func (MaioConfig) networks() []Network            { return []Network{Maio} }
func (c MaioConfig) appConfig() map[string]string { return map[string]string{"appId": c.AppID} }
func (c MaioConfig) fields() map[string]any {
	return map[string]any{"zoneId": c.ZoneID, "mediaId": c.MediaID}
}

type MediaBrixConfig struct {
	rateable
	AppID             string
	ReportingProperty string
	Zone              string
}

func (MediaBrixConfig) networks() []Network { return []Network{MediaBrix} }
func (c MediaBrixConfig) appConfig() map[string]string {
	return map[string]string{"appId": c.AppID, "reportingProperty": c.ReportingProperty}
}
func (c MediaBrixConfig) fields() map[string]any { return map[string]any{"zone": c.Zone} }

type MyTargetConfig struct {
	rateable
	SlotID      string
	PlacementID string
}

func (MyTargetConfig) networks() []Network          { return []Network{MyTarget} }
func (MyTargetConfig) appConfig() map[string]string { return nil }
func (c MyTargetConfig) fields() map[string]any {
	return map[string]any{"slotId": c.SlotID, "PlacementID": c.PlacementID}
}

// TapJoyConfig configures TapJoy and TapJoy bidding instances.
type TapJoyConfig struct {
	rateable
	SDKKey        string
	APIKey        string
	PlacementName string
}

func (TapJoyConfig) networks() []Network { return []Network{TapJoy, TapJoyBidding} }
func (c TapJoyConfig) appConfig() map[string]string {
	return map[string]string{"sdkKey": c.SDKKey, "apiKey": c.APIKey}
}
func (c TapJoyConfig) fields() map[string]any { return map[string]any{"placementName": c.PlacementName} }

// PangleConfig configures Pangle and Pangle bidding instances.
type PangleConfig struct {
	rateable
	AppID  string
	SlotID string
}

func (PangleConfig) networks() []Network            { return []Network{Pangle, PangleBidding} }
func (c PangleConfig) appConfig() map[string]string { return map[string]string{"appID": c.AppID} }
func (c PangleConfig) fields() map[string]any       { return map[string]any{"slotID": c.SlotID} }

type UnityAdsConfig struct {
	rateable
	SourceID string
	ZoneID   string
}

func (UnityAdsConfig) networks() []Network            { return []Network{UnityAds} }
func (c UnityAdsConfig) appConfig() map[string]string { return map[string]string{"sourceId": c.SourceID} }
func (c UnityAdsConfig) fields() map[string]any       { return map[string]any{"zoneId": c.ZoneID} }

type SmaatoConfig struct {
	rateable
	ApplicationName string
	AdSpaceID       string
}

func (SmaatoConfig) networks() []Network { return []Network{Smaato} }
func (c SmaatoConfig) appConfig() map[string]string {
	return map[string]string{"applicationName": c.ApplicationName}
}
func (c SmaatoConfig) fields() map[string]any { return map[string]any{"adspaceID": c.AdSpaceID} }

type SnapConfig struct {
	rateable
	AppID  string
	SlotID string
}

func (SnapConfig) networks() []Network            { return []Network{Snap} }
func (c SnapConfig) appConfig() map[string]string { return map[string]string{"AppId": c.AppID} }
func (c SnapConfig) fields() map[string]any       { return map[string]any{"SlotID": c.SlotID} }

type SuperAwesomeConfig struct {
	rateable
	AppID       string
	PlacementID string
}

func (SuperAwesomeConfig) networks() []Network            { return []Network{SuperAwesome} }
func (c SuperAwesomeConfig) appConfig() map[string]string { return map[string]string{"appId": c.AppID} }
func (c SuperAwesomeConfig) fields() map[string]any {
	return map[string]any{"placementId": c.PlacementID}
}

type TencentConfig struct {
	rateable
	AppID       string
	PlacementID string
}

func (TencentConfig) networks() []Network            { return []Network{Tencent} }
func (c TencentConfig) appConfig() map[string]string { return map[string]string{"appId": c.AppID} }
func (c TencentConfig) fields() map[string]any       { return map[string]any{"placementId": c.PlacementID} }

// YahooConfig configures Yahoo bidding instances. The app's ID is sent as
// siteId and the instance's site ID as placementId.
type YahooConfig struct {
	rateable
	AppID  string
	SiteID string
}

func (YahooConfig) networks() []Network            { return []Network{YahooBidding} }
func (c YahooConfig) appConfig() map[string]string { return map[string]string{"siteId": c.AppID} }
func (c YahooConfig) fields() map[string]any       { return map[string]any{"placementId": c.SiteID} }

// VungleConfig configures Vungle and Vungle bidding instances.
type VungleConfig struct {
	rateable
	AppID          string
	ReportingAPIID string
	PlacementID    string
}

func (VungleConfig) networks() []Network { return []Network{Vungle, VungleBidding} }
func (c VungleConfig) appConfig() map[string]string {
	return map[string]string{"AppID": c.AppID, "reportingAPIId": c.ReportingAPIID}
}
func (c VungleConfig) fields() map[string]any { return map[string]any{"PlacementId": c.PlacementID} }

var (
	_ NetworkConfig = IronSourceConfig{}
	_ NetworkConfig = AdColonyConfig{}
	_ NetworkConfig = AdMobConfig{}
	_ NetworkConfig = AmazonConfig{}
	_ NetworkConfig = AppLovinConfig{}
	_ NetworkConfig = ChartboostConfig{}
	_ NetworkConfig = TrafficConfig{}
	_ NetworkConfig = CSJConfig{}
	_ NetworkConfig = FacebookConfig{}
	_ NetworkConfig = FyberConfig{}
	_ NetworkConfig = HyprMXConfig{}
	_ NetworkConfig = InMobiConfig{}
	_ NetworkConfig = LiftoffConfig{}
	_ NetworkConfig = MaioConfig{}
	_ NetworkConfig = MediaBrixConfig{}
	_ NetworkConfig = MyTargetConfig{}
	_ NetworkConfig = TapJoyConfig{}
	_ NetworkConfig = PangleConfig{}
	_ NetworkConfig = UnityAdsConfig{}
	_ NetworkConfig = SmaatoConfig{}
	_ NetworkConfig = SnapConfig{}
	_ NetworkConfig = SuperAwesomeConfig{}
	_ NetworkConfig = TencentConfig{}
	_ NetworkConfig = YahooConfig{}
	_ NetworkConfig = VungleConfig{}
)
