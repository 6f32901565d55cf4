package domain

// Servo is a single compute unit running an instance of a project.
type Servo struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId,omitempty"`
	Status    string `json:"status"`
	Host      string `json:"host,omitempty"`
	IaaS      string `json:"iaas,omitempty"`
	Region    string `json:"region,omitempty"`
	Size      int    `json:"size,omitempty"`
}
