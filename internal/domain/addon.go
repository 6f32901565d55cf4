package domain

// Addon is an add-on provisioned on a project.
type Addon struct {
	ID      string            `json:"id"`
	AddonID string            `json:"addon_id"`
	Name    string            `json:"addon_name"`
	Plan    string            `json:"plan"`
	Config  map[string]string `json:"config,omitempty"`
}

// AvailableAddon describes an add-on that can be provisioned.
type AvailableAddon struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Plans   []AddonPlan `json:"plans"`
	Regions []string    `json:"regions,omitempty"`
}

// AddonPlan is a priced tier of an add-on.
type AddonPlan struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price,omitempty"`
}

// ProvisionAddonOpts holds the parameters for provisioning an add-on.
type ProvisionAddonOpts struct {
	AddonID string `json:"addonId"`
	PlanID  string `json:"planId"`
	Region  string `json:"region,omitempty"`
}
