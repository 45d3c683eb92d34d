package promote

// Metric is an advertiser reporting metric.
type Metric string

const (
	MetricImpressions Metric = "impressions"
	MetricClicks      Metric = "clicks"
	MetricCompletions Metric = "completions"
	MetricInstalls    Metric = "installs"
	MetricSpend       Metric = "spend"
	MetricStoreOpens  Metric = "storeOpens"
)

// AdUnit is an ad format a campaign runs on.
type AdUnit string

const (
	RewardedVideo AdUnit = "rewardedVideo"
	Interstitial  AdUnit = "interstitial"
	Banner        AdUnit = "banner"
	Offerwall     AdUnit = "offerWall"
)

// Breakdown is an advertiser reporting dimension.
type Breakdown string

const (
	BreakdownDay         Breakdown = "day"
	BreakdownCampaign    Breakdown = "campaign"
	BreakdownTitle       Breakdown = "title"
	BreakdownApplication Breakdown = "application"
	BreakdownCountry     Breakdown = "country"
	BreakdownOS          Breakdown = "os"
	BreakdownDeviceType  Breakdown = "deviceType"
	BreakdownCreative    Breakdown = "creative"
	BreakdownAdUnit      Breakdown = "adUnit"
	BreakdownCreatives   Breakdown = "creatives"
)

type Platform string

const (
	IOS     Platform = "ios"
	Android Platform = "android"
)

func strs[T ~string](vals []T) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		out = append(out, string(v))
	}
	return out
}
