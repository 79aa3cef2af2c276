// Package docker implements runtime.ContainerRuntime on the Docker
// Engine API. The client is configured from the standard environment
// (DOCKER_HOST and friends) with API version negotiation, so it works
// against any reasonably recent daemon.
package docker
