package instance

import "os"

const idEnv = "SEEDER_INSTANCE_ID"

// GetID names the process in run-lock owner values: SEEDER_INSTANCE_ID,
// then the hostname, then a fixed fallback.
func GetID() string {
	if id := os.Getenv(idEnv); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "seeder-0"
}
