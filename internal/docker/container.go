package docker

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"

	"github.com/shinji-kodama/dev-compose/internal/model"
)

// ContainerAPI is the part of the Docker SDK client used for listing.
// *client.Client satisfies it.
type ContainerAPI interface {
	ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
}

// ListProjectContainers returns every container, stopped ones included,
// that compose created for project. `compose run` containers are left out.
// The result is ordered by service name, then replica number.
//
// The label filter is applied by the daemon, so unrelated containers on
// the same host are never transferred.
func ListProjectContainers(ctx context.Context, api ContainerAPI, project string) ([]model.ContainerInfo, error) {
	containers, err := api.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("label", ProjectFilter(project))),
	})
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to list containers of project %q", project),
			err,
		)
	}

	result := make([]model.ContainerInfo, 0, len(containers))
	for _, c := range containers {
		if IsOneOff(c.Labels) {
			continue
		}
		result = append(result, containerToInfo(c))
	}

	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.ServiceName != b.ServiceName {
			return a.ServiceName < b.ServiceName
		}
		return replica(a) < replica(b)
	})
	return result, nil
}

// containerToInfo maps an SDK container summary onto ContainerInfo. The
// API reports names with a leading "/", which is dropped.
func containerToInfo(c container.Summary) model.ContainerInfo {
	name := ""
	if len(c.Names) > 0 {
		name = strings.TrimPrefix(c.Names[0], "/")
	}

	return model.ContainerInfo{
		ContainerID:   c.ID,
		ContainerName: name,
		ServiceName:   c.Labels[LabelService],
		Image:         c.Image,
		State:         string(c.State),
		Status:        c.Status,
		Labels:        c.Labels,
	}
}

// replica returns the container's replica number, or 0 when the label is
// missing or malformed.
func replica(c model.ContainerInfo) int {
	n, err := strconv.Atoi(c.Labels[LabelContainerNumber])
	if err != nil {
		return 0
	}
	return n
}
