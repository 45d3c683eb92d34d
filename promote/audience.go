package promote

import (
	"encoding/json"

	"github.com/raine/ironsource-go/api"
)

// AudienceListType is the purpose of an audience list.
type AudienceListType string

const (
	AudienceSuppression AudienceListType = "suppression_static"
	AudienceTargeting   AudienceListType = "targeting"
)

// AudienceListMeta describes a new audience list. Suppression lists need a
// bundle ID and a platform.
type AudienceListMeta struct {
	Name        string           `json:"name" validate:"required"`
	Type        AudienceListType `json:"type" validate:"required,oneof=suppression_static targeting"`
	Description string           `json:"description"`
	BundleID    string           `json:"bundleId" validate:"required_if=Type suppression_static"`
	Platform    Platform         `json:"platform" validate:"required_if=Type suppression_static"`
}

func (m AudienceListMeta) Validate() error {
	return api.ValidateStruct(m)
}

func (m AudienceListMeta) MarshalJSON() ([]byte, error) {
	w := struct {
		Name        string           `json:"name"`
		Type        AudienceListType `json:"type"`
		Description string           `json:"description"`
		BundleID    string           `json:"bundleId,omitempty"`
		Platform    Platform         `json:"platform,omitempty"`
	}{Name: m.Name, Type: m.Type, Description: m.Description}
	if m.Type == AudienceSuppression {
		w.BundleID = m.BundleID
		w.Platform = m.Platform
	}
	return json.Marshal(w)
}

// AudienceListData adds devices to some lists and removes them from others.
type AudienceListData struct {
	devices []string
	add     []string
	remove  []string
}

func NewAudienceListData() *AudienceListData {
	return &AudienceListData{}
}

// AddListForUpdate adds the devices to the list with the given ID.
func (d *AudienceListData) AddListForUpdate(listID string) {
	d.add = append(d.add, listID)
}

// AddListForRemove removes the devices from the list with the given ID.
func (d *AudienceListData) AddListForRemove(listID string) {
	d.remove = append(d.remove, listID)
}

func (d *AudienceListData) AddDevices(deviceIDs ...string) {
	d.devices = append(d.devices, deviceIDs...)
}

func (d *AudienceListData) Devices() []string {
	return append([]string(nil), d.devices...)
}

func (d *AudienceListData) MarshalJSON() ([]byte, error) {
	devices := d.devices
	if devices == nil {
		devices = []string{}
	}
	return json.Marshal(struct {
		DeviceIDs []string `json:"deviceIds"`
		Add       []string `json:"addAudience,omitempty"`
		Remove    []string `json:"removeAudience,omitempty"`
	}{devices, d.add, d.remove})
}
