package promote

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBidMarshalRoundsAmount(t *testing.T) {
	b, err := json.Marshal(Bid{Country: "US", Amount: 1.23456})
	require.NoError(t, err)
	assert.JSONEq(t, `{"country":"US","bid":1.23}`, string(b))

	b, err = json.Marshal(Bid{Country: "DE", Amount: 0.5, ApplicationID: 77})
	require.NoError(t, err)
	assert.JSONEq(t, `{"country":"DE","bid":0.5,"applicationId":77}`, string(b))
}

func TestUpdateRequestsChunking(t *testing.T) {
	c := NewCampaignBids(42)
	for i := 0; i < 20000; i++ {
		c.AddBid("US", 1, i+1)
	}

	reqs := c.updateRequests()
	require.Len(t, reqs, 3)
	assert.Equal(t, []int{9998, 9998, 4}, []int{reqs[0].count, reqs[1].count, reqs[2].count})
	for _, r := range reqs {
		assert.Equal(t, 42, r.CampaignID)
	}
	assert.Equal(t, 9999, reqs[1].Bids.([]Bid)[0].ApplicationID)
}

func TestDeleteRequestsOmitAmount(t *testing.T) {
	c := NewCampaignBids(7)
	c.AddBid("US", 2.5, 0)
	c.AddBid("GB", 1.1, 15)

	reqs := c.deleteRequests()
	require.Len(t, reqs, 1)

	b, err := json.Marshal(reqs[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"campaignId":7,"bids":[{"country":"US"},{"country":"GB","applicationId":15}]}`, string(b))
}

func TestEmptyCampaignHasNoRequests(t *testing.T) {
	assert.Empty(t, NewCampaignBids(1).updateRequests())
	assert.Empty(t, NewCampaignBids(1).deleteRequests())
}
