package docker

import "strings"

// Labels that docker compose sets on every container it creates. They are
// the only link between a running container and the project it belongs
// to, so status queries filter on them.
const (
	// LabelProject holds the compose project name.
	LabelProject = "com.docker.compose.project"

	// LabelService holds the compose service name.
	LabelService = "com.docker.compose.service"

	// LabelContainerNumber holds the replica number within the service.
	LabelContainerNumber = "com.docker.compose.container-number"

	// LabelOneOff is "True" for containers created by `compose run`.
	LabelOneOff = "com.docker.compose.oneoff"
)

// NormalizeProjectName converts name to the form compose uses for project
// names: lower case, keeping only letters, digits, '-' and '_', and not
// starting with '-' or '_'.
func NormalizeProjectName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_':
			if b.Len() > 0 {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// ProjectFilter returns the label filter value matching containers of
// the given compose project.
func ProjectFilter(project string) string {
	return LabelProject + "=" + project
}

// IsOneOff reports whether labels mark a `compose run` container.
func IsOneOff(labels map[string]string) bool {
	return strings.EqualFold(labels[LabelOneOff], "true")
}
