// Package preflight provides readiness checks for the filesystem paths and
// binaries the warden host depends on.
//
// These checks run in two contexts:
//   - The host logs a check summary at startup so misconfigured installs
//     fail loudly before the sidecar spawn is attempted.
//   - The CLI "warden status" command uses individual check functions
//     (CheckEntrypoint, CheckDirectoryAccess) to display readiness.
package preflight
