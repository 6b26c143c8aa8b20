// Package docker talks to Docker on behalf of the ConMan commands.
//
// Two access paths coexist, one per usage style:
//
//   - The lifecycle Controller drives the docker CLI as child processes
//     and finally replaces the ConMan process with an interactive
//     docker run/start, leaving the container attached directly to the
//     user's terminal.
//   - The SDK Client (github.com/docker/docker/client, with API version
//     negotiation) serves the non-interactive queries: listing,
//     stopping and removing containers for ps, stop and rm.
package docker
