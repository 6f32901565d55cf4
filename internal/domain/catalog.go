package domain

import "time"

// Image is a runtime image projects can be built on, e.g. Node.js or PHP.
type Image struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Label string     `json:"label"`
	Type  string     `json:"type"`
	Tags  []ImageTag `json:"tags,omitempty"`
}

// ImageTag is a specific version of an image.
type ImageTag struct {
	ID      string `json:"id"`
	Version string `json:"version"`
}

// SSLCertificate is the certificate installed on a project.
type SSLCertificate struct {
	Domains []string  `json:"domains"`
	Issuer  string    `json:"issuer,omitempty"`
	Expires time.Time `json:"expires,omitzero"`
}

// AddSSLOpts holds a PEM-encoded key and certificate chain.
type AddSSLOpts struct {
	Key  string `json:"key"`
	Cert string `json:"cert"`
}

// ProjectStats summarises request traffic for a project over a window.
type ProjectStats struct {
	Start           time.Time      `json:"start"`
	End             time.Time      `json:"end"`
	Requests        int64          `json:"requests"`
	BandwidthIn     int64          `json:"bandwidthIn"`
	BandwidthOut    int64          `json:"bandwidthOut"`
	AvgResponseTime float64        `json:"avgResponseTime"`
	StatusCodes     map[string]int `json:"statusCodes,omitempty"`
}
