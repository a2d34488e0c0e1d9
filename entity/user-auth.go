package entity

// UserAuth identifies the API client behind an authenticated HTTP request.
type UserAuth struct {
	Username string `json:"username"`
}
