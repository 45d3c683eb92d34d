package promote

import (
	"encoding/json"
	"math"
	"slices"
)

// bidChunkSize is the largest number of bids accepted in one request.
const bidChunkSize = 9998

// Bid is a campaign bid for a country, optionally limited to one
// application. ApplicationID 0 means all applications.
type Bid struct {
	Country       string
	Amount        float64
	ApplicationID int
}

func (b Bid) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Country       string  `json:"country"`
		Bid           float64 `json:"bid"`
		ApplicationID int     `json:"applicationId,omitempty"`
	}{b.Country, math.Round(b.Amount*100) / 100, b.ApplicationID})
}

// bidKey identifies a bid for deletion.
type bidKey struct {
	Country       string `json:"country"`
	ApplicationID int    `json:"applicationId,omitempty"`
}

// CampaignBids is a set of bids for one campaign.
type CampaignBids struct {
	CampaignID int
	Bids       []Bid
}

func NewCampaignBids(campaignID int) *CampaignBids {
	return &CampaignBids{CampaignID: campaignID}
}

func (c *CampaignBids) AddBid(country string, amount float64, applicationID int) {
	c.Bids = append(c.Bids, Bid{Country: country, Amount: amount, ApplicationID: applicationID})
}

type bidsRequest struct {
	CampaignID int `json:"campaignId"`
	Bids       any `json:"bids"`
	count      int
}

func (c *CampaignBids) updateRequests() []bidsRequest {
	var out []bidsRequest
	for chunk := range slices.Chunk(c.Bids, bidChunkSize) {
		out = append(out, bidsRequest{CampaignID: c.CampaignID, Bids: chunk, count: len(chunk)})
	}
	return out
}

func (c *CampaignBids) deleteRequests() []bidsRequest {
	var out []bidsRequest
	for chunk := range slices.Chunk(c.Bids, bidChunkSize) {
		keys := make([]bidKey, 0, len(chunk))
		for _, b := range chunk {
			keys = append(keys, bidKey{Country: b.Country, ApplicationID: b.ApplicationID})
		}
		out = append(out, bidsRequest{CampaignID: c.CampaignID, Bids: keys, count: len(chunk)})
	}
	return out
}

// BidUpdateSummary reports the outcome of one bids request.
type BidUpdateSummary struct {
	CampaignID int    `json:"campaignId"`
	BidUpdates int    `json:"bidUpdates"`
	Msg        string `json:"msg"`
	ErrorCode  int    `json:"errorCode"`
}

// OK reports whether the request was accepted.
func (s BidUpdateSummary) OK() bool {
	return s.ErrorCode == -1
}
