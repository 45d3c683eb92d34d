package promote

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/raine/ironsource-go/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAudienceListMetaValidate(t *testing.T) {
	tests := []struct {
		name  string
		meta  AudienceListMeta
		field string
	}{
		{"targeting", AudienceListMeta{Name: "a", Type: AudienceTargeting}, ""},
		{"suppression", AudienceListMeta{Name: "a", Type: AudienceSuppression, BundleID: "com.x", Platform: IOS}, ""},
		{"no name", AudienceListMeta{Type: AudienceTargeting}, "name"},
		{"suppression without bundle", AudienceListMeta{Name: "a", Type: AudienceSuppression, Platform: IOS}, "bundleId"},
		{"suppression without platform", AudienceListMeta{Name: "a", Type: AudienceSuppression, BundleID: "com.x"}, "platform"},
		{"unknown type", AudienceListMeta{Name: "a", Type: "lookalike"}, "type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.meta.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var verr *api.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestAudienceListMetaJSON(t *testing.T) {
	b, err := json.Marshal(AudienceListMeta{Name: "t", Type: AudienceTargeting, Description: "d", BundleID: "com.x", Platform: IOS})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"t","type":"targeting","description":"d"}`, string(b))

	b, err = json.Marshal(AudienceListMeta{Name: "s", Type: AudienceSuppression, BundleID: "com.x", Platform: Android})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"s","type":"suppression_static","description":"","bundleId":"com.x","platform":"android"}`, string(b))
}

func TestAudienceListDataJSON(t *testing.T) {
	d := NewAudienceListData()
	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"deviceIds":[]}`, string(b))

	d.AddDevices("dev1", "dev2")
	d.AddListForUpdate("10")
	d.AddListForRemove("11")
	d.AddListForRemove("12")
	b, err = json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"deviceIds":["dev1","dev2"],"addAudience":["10"],"removeAudience":["11","12"]}`, string(b))

	devices := d.Devices()
	devices[0] = "changed"
	assert.Equal(t, []string{"dev1", "dev2"}, d.Devices())
}
