// Package airride implements a minimal process-one supervisor for a Linux
// userland: it brings the root filesystem into a usable state, loads service
// declarations, starts and supervises them under dependency and restart
// policies, attaches interactive services to terminal devices, reaps
// orphaned children, and exposes a local control socket.
package airride
