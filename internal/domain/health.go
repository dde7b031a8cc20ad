package domain

// HealthStatus is returned by GET / on the finance API.
type HealthStatus struct {
	Message       string            `json:"message"`
	Status        string            `json:"status"` // online
	Documentation string            `json:"documentation,omitempty"`
	Endpoints     map[string]string `json:"endpoints,omitempty"`
}
