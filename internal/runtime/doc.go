// Package runtime defines the capability interface the orchestration
// core requires from a container engine, together with the fully
// resolved ContainerSpec it hands over. The core depends only on this
// interface; the Docker implementation lives in the docker package and
// an in-process fake in testutil.
package runtime
