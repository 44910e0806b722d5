// Package status reports whether the external platform components are
// reachable.
//
// Each configured component is probed with a HEAD request bounded at five
// seconds. A component is healthy when it answers with a 2xx status;
// timeouts, refused connections and error statuses all report unhealthy.
// The last result per component is exported as the
// warehouse_component_up gauge.
package status
