package monetize

// AdUnit is a monetization ad format.
type AdUnit string

const (
	RewardedVideo AdUnit = "rewardedVideo"
	Interstitial  AdUnit = "interstitial"
	Banner        AdUnit = "banner"
	Offerwall     AdUnit = "OfferWall"
)

// AdUnitStatus is the activation state of an ad unit in an app.
type AdUnitStatus string

const (
	StatusLive AdUnitStatus = "Live"
	StatusOff  AdUnitStatus = "Off"
	StatusTest AdUnitStatus = "Test"
)

// AdUnitStatusMap maps ad units to their status when registering an app.
type AdUnitStatusMap map[AdUnit]AdUnitStatus

// Platform is an app's operating system.
type Platform string

const (
	IOS     Platform = "iOS"
	Android Platform = "Android"
)

// Network identifies an ad network as the API names it.
type Network string

const (
	IronSource            Network = "ironSource"
	IronSourceBidding     Network = "ironSourceBidding"
	AppLovin              Network = "AppLovin"
	AdColony              Network = "AdColony"
	AdColonyBidding       Network = "adColonyBidding"
	AdMob                 Network = "AdMob"
	AdManager             Network = "AdManager"
	Amazon                Network = "Amazon"
	Chartboost            Network = "Chartboost"
	CrossPromotionBidding Network = "crossPromotionBidding"
	CSJ                   Network = "CSJ"
	DirectDeals           Network = "DirectDeals"
	Facebook              Network = "Facebook"
	FacebookBidding       Network = "facebookBidding"
	Fyber                 Network = "Fyber"
	HyprMX                Network = "HyprMX"
	InMobi                Network = "InMobi"
	InMobiBidding         Network = "inMobiBidding"
	Liftoff               Network = "Liftoff Bidding"
	Maio                  Network = "Maio"
	MediaBrix             Network = "mediaBrix"
	MyTarget              Network = "myTargetBidding"
	Pangle                Network = "Pangle"
	PangleBidding         Network = "pangleBidding"
	Smaato                Network = "smaatoBidding"
	Snap                  Network = "Snap"
	SuperAwesome          Network = "SuperAwesomeBidding"
	TapJoy                Network = "TapJoy"
	TapJoyBidding         Network = "TapJoyBidding"
	Tencent               Network = "Tencent"
	UnityAds              Network = "UnityAds"
	Vungle                Network = "Vungle"
	VungleBidding         Network = "vungleBidding"
	YahooBidding          Network = "yahooBidding"
)

// Metric is a mediation reporting metric.
type Metric string

const (
	MetricImpressions                  Metric = "impressions"
	MetricRevenue                      Metric = "revenue"
	MetricECPM                         Metric = "ecpm"
	MetricAppFillRate                  Metric = "appfillrate"
	MetricAppRequests                  Metric = "appRequests"
	MetricCompletions                  Metric = "completions"
	MetricRevenuePerCompletion         Metric = "revenuePerCompletion"
	MetricAppFills                     Metric = "appFills"
	MetricUseRate                      Metric = "useRate"
	MetricActiveUsers                  Metric = "activeUsers"
	MetricEngagedUsers                 Metric = "engagedUsers"
	MetricEngagedUsersRate             Metric = "engagedUsersRate"
	MetricImpressionsPerEngagedUser    Metric = "impressionsPerEngagedUser"
	MetricRevenuePerActiveUser         Metric = "revenuePerActiveUser"
	MetricRevenuePerEngagedUser        Metric = "revenuePerEngagedUser"
	MetricClicks                       Metric = "clicks"
	MetricClickThroughRate             Metric = "clickThroughRate"
	MetricCompletionRate               Metric = "completionRate"
	MetricAdSourceChecks               Metric = "adSourceChecks"
	MetricAdSourceResponses            Metric = "adSourceResponses"
	MetricAdSourceAvailabilityRate     Metric = "adSourceAvailabilityRate"
	MetricSessions                     Metric = "sessions"
	MetricEngagedSessions              Metric = "engagedSessions"
	MetricImpressionsPerSession        Metric = "impressionsPerSession"
	MetricImpressionPerEngagedSessions Metric = "impressionPerEngagedSessions"
	MetricSessionsPerActiveUser        Metric = "sessionsPerActiveUser"
)

// Breakdown is a mediation reporting dimension.
type Breakdown string

const (
	BreakdownDate           Breakdown = "date"
	BreakdownApplication    Breakdown = "app"
	BreakdownPlatform       Breakdown = "platform"
	BreakdownNetwork        Breakdown = "adSource"
	BreakdownAdUnits        Breakdown = "adUnits"
	BreakdownInstance       Breakdown = "instance"
	BreakdownCountry        Breakdown = "country"
	BreakdownSegment        Breakdown = "segment"
	BreakdownPlacement      Breakdown = "placement"
	BreakdownIOSVersion     Breakdown = "iosVersion"
	BreakdownConnectionType Breakdown = "connectionType"
	BreakdownSDKVersion     Breakdown = "sdkVersion"
	BreakdownAppVersion     Breakdown = "appVersion"
	BreakdownATT            Breakdown = "att"
	BreakdownIDFA           Breakdown = "idfa"
	BreakdownABTest         Breakdown = "abTest"
)

func strs[T ~string](vals []T) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		out = append(out, string(v))
	}
	return out
}
