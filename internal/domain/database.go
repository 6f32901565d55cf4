package domain

// Database is a hosted MongoDB database owned by a user.
type Database struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	UserID  string `json:"userId,omitempty"`
	Region  string `json:"regionId,omitempty"`
	URI     string `json:"dbUri,omitempty"`
	Version string `json:"version,omitempty"`
}

// CreateDatabaseOpts holds the parameters for creating a database.
type CreateDatabaseOpts struct {
	Name   string `json:"name"`
	UserID string `json:"userId"`
	Region string `json:"regionId,omitempty"`
}

// DatabaseUser is a login created on a hosted database.
type DatabaseUser struct {
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
	ReadOnly bool   `json:"isReadOnly"`
}
