package promote

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/raine/ironsource-go/api"
)

// Direction is the sort direction of a report.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ReportQuery selects an advertiser or SKAN report. Format defaults to JSON
// and Direction to ascending. Order names a metric or breakdown.
type ReportQuery struct {
	StartDate   time.Time
	EndDate     time.Time
	Metrics     []Metric
	Breakdowns  []Breakdown
	Format      api.Format
	Count       int
	CampaignIDs []int
	BundleIDs   []string
	CreativeIDs []int
	Countries   []string
	OS          Platform
	DeviceType  string
	AdUnit      AdUnit
	Order       string
	Direction   Direction
}

// reportRules lists what a report endpoint accepts. A nil adUnits allows
// any ad unit.
type reportRules struct {
	name       string
	metrics    []Metric
	breakdowns []Breakdown
	adUnits    []AdUnit
	order      []string
}

var advertiserRules = reportRules{
	name:    "advertiser reporting",
	metrics: []Metric{MetricImpressions, MetricSpend, MetricClicks, MetricInstalls, MetricCompletions},
	breakdowns: []Breakdown{
		BreakdownDay, BreakdownCampaign, BreakdownTitle, BreakdownApplication, BreakdownAdUnit,
		BreakdownCountry, BreakdownOS, BreakdownDeviceType, BreakdownCreatives,
	},
	order: []string{
		string(BreakdownDay), string(BreakdownCampaign), string(BreakdownTitle), string(BreakdownApplication),
		string(BreakdownCountry), string(BreakdownCreatives), string(BreakdownOS),
		string(MetricImpressions), string(MetricClicks), string(MetricCompletions), string(MetricSpend), string(MetricInstalls),
	},
}

var skanRules = reportRules{
	name:    "skan reporting",
	metrics: []Metric{MetricImpressions, MetricSpend, MetricInstalls, MetricStoreOpens},
	breakdowns: []Breakdown{
		BreakdownDay, BreakdownCampaign, BreakdownTitle, BreakdownApplication, BreakdownAdUnit, BreakdownCountry,
	},
	adUnits: []AdUnit{Interstitial, RewardedVideo},
	order: []string{
		string(BreakdownDay), string(BreakdownCampaign), string(BreakdownTitle), string(BreakdownApplication),
		string(BreakdownCountry), string(MetricImpressions), string(MetricSpend), string(MetricInstalls),
	},
}

func (r reportRules) check(q ReportQuery) error {
	if q.StartDate.IsZero() || q.EndDate.IsZero() {
		return api.Validationf("startDate", "start and end dates are required")
	}
	if len(q.Metrics) == 0 {
		return api.Validationf("metrics", "at least one metric is required")
	}
	for _, m := range q.Metrics {
		if !slices.Contains(r.metrics, m) {
			return api.Validationf("metrics", "only %s metrics are allowed in %s, got %s", strings.Join(strs(r.metrics), ", "), r.name, m)
		}
	}
	for _, b := range q.Breakdowns {
		if !slices.Contains(r.breakdowns, b) {
			return api.Validationf("breakdowns", "only %s breakdowns are allowed in %s, got %s", strings.Join(strs(r.breakdowns), ", "), r.name, b)
		}
	}
	if q.AdUnit != "" && r.adUnits != nil && !slices.Contains(r.adUnits, q.AdUnit) {
		return api.Validationf("adUnit", "only %s ad units are allowed in %s, got %s", strings.Join(strs(r.adUnits), ", "), r.name, q.AdUnit)
	}
	if q.Order != "" && !slices.Contains(r.order, q.Order) {
		return api.Validationf("order", "you can only order by %s for %s, got %s", strings.Join(r.order, ", "), r.name, q.Order)
	}
	switch q.Format {
	case "", api.FormatJSON, api.FormatCSV:
	default:
		return api.Validationf("format", "format must be json or csv, got %q", q.Format)
	}
	switch q.Direction {
	case "", Ascending, Descending:
	default:
		return api.Validationf("direction", "direction must be asc or desc, got %q", q.Direction)
	}
	return nil
}

func (q ReportQuery) values() url.Values {
	format := q.Format
	if format == "" {
		format = api.FormatJSON
	}
	direction := q.Direction
	if direction == "" {
		direction = Ascending
	}

	v := url.Values{
		"startDate": {q.StartDate.Format(api.DateLayout)},
		"endDate":   {q.EndDate.Format(api.DateLayout)},
		"format":    {string(format)},
		"direction": {string(direction)},
		"metrics":   {strings.Join(strs(q.Metrics), ",")},
	}
	if len(q.Breakdowns) > 0 {
		v.Set("breakdowns", strings.Join(strs(q.Breakdowns), ","))
	}
	if q.Count > 0 {
		v.Set("count", strconv.Itoa(q.Count))
	}
	if len(q.CampaignIDs) > 0 {
		v.Set("campaignId", joinInts(q.CampaignIDs))
	}
	if len(q.BundleIDs) > 0 {
		v.Set("bundleId", strings.Join(q.BundleIDs, ","))
	}
	if len(q.CreativeIDs) > 0 {
		v.Set("creativeId", joinInts(q.CreativeIDs))
	}
	if len(q.Countries) > 0 {
		v.Set("country", strings.Join(q.Countries, ","))
	}
	if q.OS != "" {
		v.Set("os", string(q.OS))
	}
	if q.DeviceType != "" {
		v.Set("deviceType", q.DeviceType)
	}
	if q.AdUnit != "" {
		v.Set("adUnit", string(q.AdUnit))
	}
	if q.Order != "" {
		v.Set("order", q.Order)
	}
	return v
}

func joinInts(ids []int) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.Itoa(id))
	}
	return strings.Join(parts, ",")
}
