// Package monetize wraps the ironSource publisher (Monetize) APIs: ad revenue
// and mediation reporting, apps, instances, mediation groups and placements.
package monetize

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/raine/ironsource-go/api"
	"github.com/rs/zerolog/log"
)

const (
	appsPath             = "/partners/publisher/applications/v6"
	reportPath           = "/partners/publisher/mediation/applications/v6/stats"
	userAdRevenuePath    = "/partners/userAdRevenue/v3"
	adRevenueMeasurePath = "/partners/adRevenueMeasurements/v3"
	groupsPath           = "/partners/publisher/mediation/management/v2"
	instancesPath        = "/partners/publisher/instances/v1"
	placementsPath       = "/partners/publisher/placements/v1"
)

// API is the Monetize façade. It is safe for concurrent use.
type API struct {
	client *api.Client
}

func New(client *api.Client) *API {
	return &API{client: client}
}

func (m *API) getJSON(ctx context.Context, op, path string, query url.Values) (json.RawMessage, error) {
	var out json.RawMessage
	err := m.client.DoJSON(ctx, op, api.Request{
		Method: http.MethodGet,
		URL:    m.client.PlatformURL(path),
		Auth:   api.AuthBearer,
		Query:  query,
	}, &out)
	return out, err
}

func (m *API) sendJSON(ctx context.Context, op, method, path string, body any) (json.RawMessage, error) {
	var out json.RawMessage
	err := m.client.DoJSON(ctx, op, api.Request{
		Method: method,
		URL:    m.client.PlatformURL(path),
		Auth:   api.AuthBearer,
		JSON:   body,
	}, &out)
	return out, err
}

// reportFileURL asks a revenue endpoint for the day's report and returns
// the download link of its first file.
func (m *API) reportFileURL(ctx context.Context, op, path string, date time.Time, appKey string) (string, error) {
	var res struct {
		URLs []string `json:"urls"`
	}
	err := m.client.DoJSON(ctx, op, api.Request{
		Method: http.MethodGet,
		URL:    m.client.PlatformURL(path),
		Auth:   api.AuthBearer,
		Query: url.Values{
			"date":       {date.Format(api.DateLayout)},
			"appKey":     {appKey},
			"reportType": {"1"},
		},
	}, &res)
	if err != nil {
		return "", err
	}
	if len(res.URLs) == 0 {
		return "", fmt.Errorf("%s: response has no report urls", op)
	}
	return res.URLs[0], nil
}

// UserAdRevenue downloads the user level ad revenue CSV of an app for date.
func (m *API) UserAdRevenue(ctx context.Context, date time.Time, appKey string) ([]byte, error) {
	fileURL, err := m.reportFileURL(ctx, "get user ad revenue", userAdRevenuePath, date, appKey)
	if err != nil {
		return nil, err
	}
	return m.client.FetchGzip(ctx, fileURL)
}

// UserAdRevenueStream is UserAdRevenue returning a reader over the
// decompressed file. The caller must close it.
func (m *API) UserAdRevenueStream(ctx context.Context, date time.Time, appKey string) (io.ReadCloser, error) {
	fileURL, err := m.reportFileURL(ctx, "get user ad revenue", userAdRevenuePath, date, appKey)
	if err != nil {
		return nil, err
	}
	return m.client.OpenGzip(ctx, fileURL)
}

// ImpressionAdRevenue downloads the impression level ad revenue CSV of an
// app for date.
func (m *API) ImpressionAdRevenue(ctx context.Context, date time.Time, appKey string) ([]byte, error) {
	fileURL, err := m.reportFileURL(ctx, "get impression ad revenue", adRevenueMeasurePath, date, appKey)
	if err != nil {
		return nil, err
	}
	return m.client.FetchGzip(ctx, fileURL)
}

func (m *API) ImpressionAdRevenueStream(ctx context.Context, date time.Time, appKey string) (io.ReadCloser, error) {
	fileURL, err := m.reportFileURL(ctx, "get impression ad revenue", adRevenueMeasurePath, date, appKey)
	if err != nil {
		return nil, err
	}
	return m.client.OpenGzip(ctx, fileURL)
}

// MonetizationQuery filters a mediation report. Zero fields are omitted.
type MonetizationQuery struct {
	StartDate  time.Time
	EndDate    time.Time
	AppKey     string
	Country    string
	AdUnit     AdUnit
	AdSource   Network
	Metrics    []Metric
	Breakdowns []Breakdown
}

func (q MonetizationQuery) values() (url.Values, error) {
	if q.StartDate.IsZero() || q.EndDate.IsZero() {
		return nil, api.Validationf("startDate", "start and end dates are required")
	}
	if q.EndDate.Before(q.StartDate) {
		return nil, api.Validationf("endDate", "end date is before start date")
	}

	v := url.Values{
		"startDate": {q.StartDate.Format(api.DateLayout)},
		"endDate":   {q.EndDate.Format(api.DateLayout)},
	}
	if q.AppKey != "" {
		v.Set("appKey", q.AppKey)
	}
	if q.Country != "" {
		v.Set("country", q.Country)
	}
	if q.AdUnit != "" {
		v.Set("adUnits", string(q.AdUnit))
	}
	if q.AdSource != "" {
		v.Set("adSource", string(q.AdSource))
	}
	if len(q.Metrics) > 0 {
		v["metrics"] = strs(q.Metrics)
	}
	if len(q.Breakdowns) > 0 {
		v["breakdowns"] = strs(q.Breakdowns)
	}
	return v, nil
}

// MonetizationData returns the mediation report rows.
func (m *API) MonetizationData(ctx context.Context, q MonetizationQuery) (json.RawMessage, error) {
	query, err := q.values()
	if err != nil {
		return nil, err
	}
	return m.getJSON(ctx, "get monetization data", reportPath, query)
}

func (m *API) Apps(ctx context.Context) (json.RawMessage, error) {
	return m.getJSON(ctx, "get apps", appsPath, nil)
}

// TemporaryApp registers an app that is not yet live in a store.
type TemporaryApp struct {
	Name     string   `json:"appName" validate:"required"`
	Platform Platform `json:"platform" validate:"oneof=iOS Android"`
	Coppa    bool
	AdUnits  AdUnitStatusMap
	// Ccpa is sent only when set.
	Ccpa *bool
}

// StoreApp registers an app by its store URL.
type StoreApp struct {
	StoreURL string `json:"storeUrl" validate:"required"`
	// Taxonomy is the app's sub-genre label.
	Taxonomy string
	Coppa    bool
	AdUnits  AdUnitStatusMap
	Ccpa     *bool
}

type appWire struct {
	AppName  string          `json:"appName,omitempty"`
	Platform Platform        `json:"platform,omitempty"`
	StoreURL string          `json:"storeUrl,omitempty"`
	Taxonomy string          `json:"taxonomy,omitempty"`
	Coppa    int             `json:"coppa"`
	AdUnits  AdUnitStatusMap `json:"adUnits,omitempty"`
	Ccpa     *int            `json:"ccpa,omitempty"`
}

func optionalBool(b *bool) *int {
	if b == nil {
		return nil
	}
	v := boolInt(*b)
	return &v
}

// AppResult is the answer to an app registration.
type AppResult struct {
	AppKey string `json:"appKey"`
}

// AddTemporaryApp creates an app that is not yet published.
func (m *API) AddTemporaryApp(ctx context.Context, app TemporaryApp) (AppResult, error) {
	if err := api.ValidateStruct(app); err != nil {
		return AppResult{}, err
	}

	var res AppResult
	err := m.client.DoJSON(ctx, "add temporary app", api.Request{
		Method: http.MethodPost,
		URL:    m.client.PlatformURL(appsPath),
		Auth:   api.AuthBearer,
		JSON: appWire{
			AppName:  app.Name,
			Platform: app.Platform,
			Coppa:    boolInt(app.Coppa),
			AdUnits:  app.AdUnits,
			Ccpa:     optionalBool(app.Ccpa),
		},
	}, &res)
	return res, err
}

// AddApp creates an app that is already live in a store.
func (m *API) AddApp(ctx context.Context, app StoreApp) (AppResult, error) {
	if err := api.ValidateStruct(app); err != nil {
		return AppResult{}, err
	}

	var res AppResult
	err := m.client.DoJSON(ctx, "add app", api.Request{
		Method: http.MethodPost,
		URL:    m.client.PlatformURL(appsPath),
		Auth:   api.AuthBearer,
		JSON: appWire{
			StoreURL: app.StoreURL,
			Taxonomy: app.Taxonomy,
			Coppa:    boolInt(app.Coppa),
			AdUnits:  app.AdUnits,
			Ccpa:     optionalBool(app.Ccpa),
		},
	}, &res)
	return res, err
}

func (m *API) Instances(ctx context.Context, appKey string) (json.RawMessage, error) {
	return m.getJSON(ctx, "get instances", instancesPath, url.Values{"appKey": {appKey}})
}

// AddInstances creates instances and returns the app's instance list.
func (m *API) AddInstances(ctx context.Context, appKey string, instances []*Instance) (json.RawMessage, error) {
	if len(instances) == 0 {
		return nil, api.Validationf("instances", "at least one instance is required")
	}
	body, err := instancesBody(appKey, instances, false)
	if err != nil {
		return nil, err
	}
	return m.sendJSON(ctx, "add instances", http.MethodPost, instancesPath, body)
}

// UpdateInstances updates instances by ID and returns the app's instance list.
func (m *API) UpdateInstances(ctx context.Context, appKey string, instances []*Instance) (json.RawMessage, error) {
	if len(instances) == 0 {
		return nil, api.Validationf("instances", "at least one instance is required")
	}
	for _, inst := range instances {
		if inst != nil && inst.ID <= 0 {
			return nil, api.Validationf("instanceId", "instance %q has no id", inst.Name)
		}
	}
	body, err := instancesBody(appKey, instances, true)
	if err != nil {
		return nil, err
	}
	return m.sendJSON(ctx, "update instances", http.MethodPut, instancesPath, body)
}

func (m *API) DeleteInstance(ctx context.Context, appKey string, instanceID int) (json.RawMessage, error) {
	var out json.RawMessage
	err := m.client.DoJSON(ctx, fmt.Sprintf("delete instance %d", instanceID), api.Request{
		Method: http.MethodDelete,
		URL:    m.client.PlatformURL(instancesPath),
		Auth:   api.AuthBearer,
		Query: url.Values{
			"appKey":     {appKey},
			"instanceId": {strconv.Itoa(instanceID)},
		},
	}, &out)
	return out, err
}

func (m *API) MediationGroups(ctx context.Context, appKey string) (json.RawMessage, error) {
	return m.getJSON(ctx, "get mediation groups", groupsPath, url.Values{"appKey": {appKey}})
}

// NewMediationGroup describes a group to create. Position and Segment are
// omitted when zero.
type NewMediationGroup struct {
	AppKey    string
	AdUnit    AdUnit
	Name      string   `json:"groupName" validate:"required"`
	Countries []string `json:"groupCountries" validate:"min=1"`
	Position  int
	Segment   int
	Priority  *Priority
}

// MediationGroupUpdate changes an existing group. Zero fields are left as
// they are.
type MediationGroupUpdate struct {
	AppKey    string
	GroupID   int `json:"groupId" validate:"gt=0"`
	Name      string
	Countries []string
	Segment   int
	Priority  *Priority
}

type groupWire struct {
	AppKey    string    `json:"appKey"`
	GroupID   int       `json:"groupId,omitempty"`
	AdUnit    AdUnit    `json:"adUnit,omitempty"`
	Countries []string  `json:"groupCountries,omitempty"`
	Name      string    `json:"groupName,omitempty"`
	Position  int       `json:"groupPosition,omitempty"`
	Segments  int       `json:"groupSegments,omitempty"`
	Priority  *Priority `json:"adSourcePriority,omitempty"`
}

// CreateMediationGroup creates a group and returns the app's group list.
func (m *API) CreateMediationGroup(ctx context.Context, g NewMediationGroup) (json.RawMessage, error) {
	if err := api.ValidateStruct(g); err != nil {
		return nil, err
	}
	if g.Priority == nil {
		g.Priority = NewPriority()
	}
	if err := g.Priority.validate(); err != nil {
		return nil, err
	}

	return m.sendJSON(ctx, "create mediation group", http.MethodPost, groupsPath, groupWire{
		AppKey:    g.AppKey,
		AdUnit:    g.AdUnit,
		Countries: g.Countries,
		Name:      g.Name,
		Position:  g.Position,
		Segments:  g.Segment,
		Priority:  g.Priority,
	})
}

// UpdateMediationGroup updates a group and returns the app's group list.
func (m *API) UpdateMediationGroup(ctx context.Context, g MediationGroupUpdate) (json.RawMessage, error) {
	if err := api.ValidateStruct(g); err != nil {
		return nil, err
	}
	if g.Priority != nil {
		if err := g.Priority.validate(); err != nil {
			return nil, err
		}
	}

	return m.sendJSON(ctx, fmt.Sprintf("update mediation group %d", g.GroupID), http.MethodPut, groupsPath, groupWire{
		AppKey:    g.AppKey,
		GroupID:   g.GroupID,
		Countries: g.Countries,
		Name:      g.Name,
		Segments:  g.Segment,
		Priority:  g.Priority,
	})
}

func (m *API) DeleteMediationGroup(ctx context.Context, appKey string, groupID int) (json.RawMessage, error) {
	var out json.RawMessage
	err := m.client.DoJSON(ctx, fmt.Sprintf("delete mediation group %d", groupID), api.Request{
		Method: http.MethodDelete,
		URL:    m.client.PlatformURL(groupsPath),
		Auth:   api.AuthBearer,
		Query: url.Values{
			"appKey":  {appKey},
			"groupId": {strconv.Itoa(groupID)},
		},
	}, &out)
	return out, err
}

func (m *API) Placements(ctx context.Context, appKey string) (json.RawMessage, error) {
	return m.getJSON(ctx, "get placements", placementsPath, url.Values{"appKey": {appKey}})
}

type placementsWire struct {
	AppKey     string       `json:"appKey"`
	Placements []*Placement `json:"placements"`
}

func normalizePlacements(placements []*Placement, check func(*Placement) error) ([]*Placement, error) {
	if len(placements) == 0 {
		return nil, api.Validationf("placements", "length of placements list must be > 0")
	}
	out := make([]*Placement, 0, len(placements))
	for _, p := range placements {
		if p == nil {
			return nil, api.Validationf("placements", "nil placement")
		}
		if err := check(p); err != nil {
			return nil, err
		}
		np, err := NewPlacement(*p)
		if err != nil {
			return nil, err
		}
		out = append(out, np)
	}
	return out, nil
}

// AddPlacements creates placements. Every placement needs a name.
func (m *API) AddPlacements(ctx context.Context, appKey string, placements []*Placement) (json.RawMessage, error) {
	list, err := normalizePlacements(placements, func(p *Placement) error {
		if p.Name == "" {
			return api.Validationf("name", "new placements must have a name")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Debug().Str("appKey", appKey).Int("count", len(list)).Msg("adding placements")
	return m.sendJSON(ctx, "add placements", http.MethodPost, placementsPath, placementsWire{AppKey: appKey, Placements: list})
}

// UpdatePlacements updates placements by ID.
func (m *API) UpdatePlacements(ctx context.Context, appKey string, placements []*Placement) (json.RawMessage, error) {
	list, err := normalizePlacements(placements, func(p *Placement) error {
		if p.ID <= 0 {
			return api.Validationf("id", "updated placements must have an id")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m.sendJSON(ctx, "update placements", http.MethodPut, placementsPath, placementsWire{AppKey: appKey, Placements: list})
}

// DeletePlacement archives a placement. The API answers with plain text.
func (m *API) DeletePlacement(ctx context.Context, appKey string, adUnit AdUnit, placementID int) (string, error) {
	res, err := m.client.Do(ctx, fmt.Sprintf("delete placement %d", placementID), api.Request{
		Method: http.MethodDelete,
		URL:    m.client.PlatformURL(placementsPath),
		Auth:   api.AuthBearer,
		JSON: map[string]any{
			"appKey": appKey,
			"adUnit": adUnit,
			"id":     placementID,
		},
	})
	if err != nil {
		return "", err
	}
	return res.Text(), nil
}
