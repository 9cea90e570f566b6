package instance

import "github.com/angelmondragon/limited-access-backend/pkg/env"

const defaultID = "local"

// GetID returns the process identifier used in startup logs: INSTANCE_ID,
// then the platform dyno name, then "local".
func GetID() string {
	if id := env.First("INSTANCE_ID", "DYNO", "HOSTNAME"); id != "" {
		return id
	}
	return defaultID
}
