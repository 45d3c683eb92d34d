// Package promote wraps the ironSource advertiser (Promote) APIs: reporting,
// multibid, audience lists, titles, assets and creatives.
package promote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/raine/ironsource-go/api"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	reportsPath       = "/advertisers/v2/reports"
	skanReportsPath   = "/advertisers/v4/reports/skan"
	universalSkanPath = "/partners/postback/v1"
	multibidPath      = "/advertisers/v2/multibid"
	titlesPath        = "/advertisers/v2/titles"
	assetsPath        = "/advertisers/v2/assets"
	creativesPath     = "/advertisers/v2/creatives"

	audienceShowPath   = "/audience/api/show"
	audienceCreatePath = "/audience/api/create"
	audiencePath       = "/audience/api"

	defaultBidsPageSize = 1000
	bidConcurrency      = 4
)

// API is the Promote façade. It is safe for concurrent use.
type API struct {
	client *api.Client
}

func New(client *api.Client) *API {
	return &API{client: client}
}

func (p *API) getJSON(ctx context.Context, op, path string, query url.Values) (json.RawMessage, error) {
	var out json.RawMessage
	err := p.client.DoJSON(ctx, op, api.Request{
		Method: http.MethodGet,
		URL:    p.client.AdvertiserURL(path),
		Auth:   api.AuthBearer,
		Query:  query,
	}, &out)
	return out, err
}

// AdvertiserStatistics streams the user acquisition report. Each page is one
// chunk: a JSON array, or a CSV block when q.Format is csv.
func (p *API) AdvertiserStatistics(ctx context.Context, q ReportQuery) (*api.PageStream, error) {
	return p.report(ctx, "get advertiser statistics", reportsPath, advertiserRules, q)
}

// SkanReport streams the SKAdNetwork report. It accepts fewer metrics,
// breakdowns and ad units than AdvertiserStatistics.
func (p *API) SkanReport(ctx context.Context, q ReportQuery) (*api.PageStream, error) {
	return p.report(ctx, "get skan report", skanReportsPath, skanRules, q)
}

func (p *API) report(ctx context.Context, op, path string, rules reportRules, q ReportQuery) (*api.PageStream, error) {
	if err := rules.check(q); err != nil {
		return nil, err
	}
	return p.client.Paginate(ctx, api.PageRequest{
		Op:      op,
		URL:     p.client.AdvertiserURL(path),
		Auth:    api.AuthBearer,
		Query:   q.values(),
		DataKey: "data",
	}), nil
}

// UniversalSkanReport returns the raw winning postbacks for date, as a JSON
// document listing the report file URLs.
func (p *API) UniversalSkanReport(ctx context.Context, date time.Time) ([]byte, error) {
	res, err := p.client.Do(ctx, "get universal skan report", api.Request{
		Method: http.MethodGet,
		URL:    p.client.PlatformURL(universalSkanPath),
		Auth:   api.AuthBearer,
		Query:  url.Values{"date": {date.Format(api.DateLayout)}},
	})
	if err != nil {
		return nil, err
	}
	return res.Body, nil
}

// CampaignBids streams the current bids of a campaign, maxRecords per page.
// A maxRecords of 0 uses the API default of 1000.
func (p *API) CampaignBids(ctx context.Context, campaignID, maxRecords int) *api.PageStream {
	if maxRecords <= 0 {
		maxRecords = defaultBidsPageSize
	}
	return p.client.Paginate(ctx, api.PageRequest{
		Op:   "get bids for campaign",
		URL:  p.client.AdvertiserURL(multibidPath),
		Auth: api.AuthBearer,
		Query: url.Values{
			"campaignId": {strconv.Itoa(campaignID)},
			"count":      {strconv.Itoa(maxRecords)},
		},
		DataKey: "bids",
	})
}

// UpdateBids sends the bids of every campaign in chunks of at most 9998.
// It returns one summary per chunk in input order. Chunks are sent
// concurrently and a failed chunk does not stop the others; the returned
// error joins every failure.
func (p *API) UpdateBids(ctx context.Context, campaigns []*CampaignBids) ([]BidUpdateSummary, error) {
	var reqs []bidsRequest
	for _, c := range campaigns {
		reqs = append(reqs, c.updateRequests()...)
	}
	return p.sendBids(ctx, "update bids", http.MethodPut, reqs)
}

// DeleteBids removes the bids of every campaign. Only the country and
// application of each bid are sent.
func (p *API) DeleteBids(ctx context.Context, campaigns []*CampaignBids) ([]BidUpdateSummary, error) {
	var reqs []bidsRequest
	for _, c := range campaigns {
		reqs = append(reqs, c.deleteRequests()...)
	}
	return p.sendBids(ctx, "delete bids", http.MethodDelete, reqs)
}

func (p *API) sendBids(ctx context.Context, op, method string, reqs []bidsRequest) ([]BidUpdateSummary, error) {
	summaries := make([]BidUpdateSummary, len(reqs))
	errs := make([]error, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bidConcurrency)
	for i, req := range reqs {
		g.Go(func() error {
			res := p.client.Execute(gctx, api.Request{
				Method: method,
				URL:    p.client.AdvertiserURL(multibidPath),
				Auth:   api.AuthBearer,
				JSON:   req,
			})
			summaries[i] = BidUpdateSummary{
				CampaignID: req.CampaignID,
				BidUpdates: req.count,
				Msg:        strings.TrimSpace(res.Text()),
				ErrorCode:  res.ErrorCode,
			}
			if err := res.Err(fmt.Sprintf("%s for campaign %d", op, req.CampaignID)); err != nil {
				log.Warn().Int("campaign", req.CampaignID).Int("bids", req.count).Err(err).Msg("bids request failed")
				errs[i] = err
			}
			return nil
		})
	}
	_ = g.Wait()

	return summaries, errors.Join(errs...)
}

// AudienceLists returns every audience list of the account.
func (p *API) AudienceLists(ctx context.Context) (json.RawMessage, error) {
	var out json.RawMessage
	err := p.client.DoJSON(ctx, "get audience lists", api.Request{
		Method: http.MethodGet,
		URL:    p.client.AudienceURL(audienceShowPath),
		Auth:   api.AuthBasic,
	}, &out)
	return out, err
}

func (p *API) CreateAudienceList(ctx context.Context, meta AudienceListMeta) (json.RawMessage, error) {
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	var out json.RawMessage
	err := p.client.DoJSON(ctx, "create audience list", api.Request{
		Method: http.MethodPost,
		URL:    p.client.AudienceURL(audienceCreatePath),
		Auth:   api.AuthBasic,
		JSON:   meta,
	}, &out)
	return out, err
}

func (p *API) DeleteAudienceList(ctx context.Context, listID string) (json.RawMessage, error) {
	if listID == "" {
		return nil, api.Validationf("id", "audience list id is required")
	}
	var out json.RawMessage
	err := p.client.DoJSON(ctx, "delete audience list "+listID, api.Request{
		Method: http.MethodDelete,
		URL:    p.client.AudienceURL(audiencePath + "/" + url.PathEscape(listID)),
		Auth:   api.AuthBasic,
	}, &out)
	return out, err
}

// UpdateAudienceList adds and removes devices from audience lists. The API
// answers with plain text.
func (p *API) UpdateAudienceList(ctx context.Context, data *AudienceListData) (string, error) {
	if data == nil || len(data.devices) == 0 {
		return "", api.Validationf("deviceIds", "at least one device id is required")
	}
	if len(data.add) == 0 && len(data.remove) == 0 {
		return "", api.Validationf("audience", "no audience list to add to or remove from")
	}
	res, err := p.client.Do(ctx, "update audience lists", api.Request{
		Method: http.MethodPost,
		URL:    p.client.AudienceURL(audiencePath),
		Auth:   api.AuthBasic,
		JSON:   data,
	})
	if err != nil {
		return "", err
	}
	return res.Text(), nil
}

// Page selects one page of a listing. RequestID is taken from the previous
// response.
type Page struct {
	RequestID       string
	PageNumber      int
	ResultsBulkSize int
}

func (pg Page) apply(v url.Values) {
	if pg.RequestID != "" {
		v.Set("requestId", pg.RequestID)
	}
	if pg.PageNumber > 0 {
		v.Set("pageNumber", strconv.Itoa(pg.PageNumber))
	}
	if pg.ResultsBulkSize > 0 {
		v.Set("resultsBulkSize", strconv.Itoa(pg.ResultsBulkSize))
	}
}

type TitleQuery struct {
	OS         Platform
	SearchTerm string
	Page
}

func (p *API) Titles(ctx context.Context, q TitleQuery) (json.RawMessage, error) {
	v := url.Values{}
	if q.OS != "" {
		v.Set("os", string(q.OS))
	}
	if q.SearchTerm != "" {
		v.Set("searchTerm", q.SearchTerm)
	}
	q.apply(v)
	return p.getJSON(ctx, "get titles", titlesPath, v)
}

type AssetQuery struct {
	Type    AssetType
	TitleID int
	IDs     []int
	Page
}

func (p *API) Assets(ctx context.Context, q AssetQuery) (json.RawMessage, error) {
	v := url.Values{}
	if q.Type != "" {
		if err := checkAssetType(q.Type, AssetImage, AssetVideo, AssetHTML, AssetHTMLIEC); err != nil {
			return nil, err
		}
		v.Set("type", string(q.Type))
	}
	if q.TitleID > 0 {
		v.Set("titleId", strconv.Itoa(q.TitleID))
	}
	if len(q.IDs) > 0 {
		v.Set("ids", joinInts(q.IDs))
	}
	q.apply(v)
	return p.getJSON(ctx, "get assets", assetsPath, v)
}

// NewAsset is an image or video to upload for a title.
type NewAsset struct {
	TitleID  int
	Type     AssetType
	FileName string
	File     io.Reader
}

// CreateAsset uploads an asset as multipart form data.
func (p *API) CreateAsset(ctx context.Context, a NewAsset) (json.RawMessage, error) {
	if err := checkAssetType(a.Type, AssetImage, AssetVideo); err != nil {
		return nil, err
	}
	if a.TitleID <= 0 {
		return nil, api.Validationf("titleId", "title id is required")
	}
	if a.File == nil || a.FileName == "" {
		return nil, api.Validationf("file", "file and file name are required")
	}

	var out json.RawMessage
	err := p.client.DoJSON(ctx, "create asset", api.Request{
		Method: http.MethodPost,
		URL:    p.client.AdvertiserURL(assetsPath),
		Auth:   api.AuthBearer,
		Form: map[string]string{
			"type":    string(a.Type),
			"titleId": strconv.Itoa(a.TitleID),
		},
		Files: []api.File{{Param: "file", Name: a.FileName, Reader: a.File}},
	}, &out)
	return out, err
}

// CreateAssetFromFile uploads the file at path. An empty name keeps the
// file's base name.
func (p *API) CreateAssetFromFile(ctx context.Context, titleID int, assetType AssetType, path, name string) (json.RawMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("create asset: %w", err)
	}
	defer f.Close()

	if name == "" {
		name = filepath.Base(path)
	}
	return p.CreateAsset(ctx, NewAsset{TitleID: titleID, Type: assetType, FileName: name, File: f})
}

type CreativeQuery struct {
	Type    CreativeType
	TitleID int
	Page
}

func (p *API) Creatives(ctx context.Context, q CreativeQuery) (json.RawMessage, error) {
	v := url.Values{}
	if q.Type != "" {
		if _, ok := creativeUsage[q.Type]; !ok {
			return nil, api.Validationf("type", "unknown creative type %q", q.Type)
		}
		v.Set("type", string(q.Type))
	}
	if q.TitleID > 0 {
		v.Set("titleId", strconv.Itoa(q.TitleID))
	}
	q.apply(v)
	return p.getJSON(ctx, "get creatives", creativesPath, v)
}

// CreateCreatives creates creatives for a title. Every creative must have
// all the assets its type requires.
func (p *API) CreateCreatives(ctx context.Context, titleID int, creatives []*Creative) (json.RawMessage, error) {
	if titleID <= 0 {
		return nil, api.Validationf("titleId", "title id is required")
	}
	if len(creatives) == 0 {
		return nil, api.Validationf("creatives", "at least one creative is required")
	}
	for _, c := range creatives {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("creative %q: %w", c.Name, err)
		}
	}

	var out json.RawMessage
	err := p.client.DoJSON(ctx, "create creatives", api.Request{
		Method: http.MethodPost,
		URL:    p.client.AdvertiserURL(creativesPath),
		Auth:   api.AuthBearer,
		JSON: struct {
			TitleID   int         `json:"titleId"`
			Creatives []*Creative `json:"creatives"`
		}{titleID, creatives},
	}, &out)
	return out, err
}
