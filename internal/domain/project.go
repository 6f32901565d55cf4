package domain

import "time"

// Project is a deployable application hosted on the platform.
type Project struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Creator       string            `json:"creator"`
	Status        string            `json:"status"`
	Domain        string            `json:"domain,omitempty"`
	CustomDomains []string          `json:"customDomains,omitempty"`
	ServoSize     int               `json:"servoSize,omitempty"`
	ImageTagIDs   map[string]string `json:"imageTagIds,omitempty"`
	EnvVars       []EnvVar          `json:"envVars,omitempty"`
	Servos        []Servo           `json:"servos,omitempty"`
	CreatedAt     time.Time         `json:"createdAt,omitzero"`
}

// EnvVar is a single environment variable set on a project.
type EnvVar struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CreateProjectOpts holds the parameters for creating a new project.
type CreateProjectOpts struct {
	Name        string            `json:"name"`
	Creator     string            `json:"creator"`
	ServoSize   int               `json:"servoSize,omitempty"`
	ImageTagIDs map[string]string `json:"imageTagIds,omitempty"`
}

// ScaleInstance requests count servos in one region of one infrastructure
// provider.
type ScaleInstance struct {
	IaaS   string `json:"iaas"`
	Region string `json:"region"`
	Count  int    `json:"count"`
}

// UploadProgress is the fraction (0 to 1) of a deploy archive received by
// the platform.
type UploadProgress struct {
	Progress float64 `json:"progress"`
}
