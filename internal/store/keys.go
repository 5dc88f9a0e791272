package store

// Persisted document keys.
const (
	KeyProfile         = "profile"
	KeyProjects        = "projects"
	KeyProjectsOpenMap = "projects_open_map"
)
