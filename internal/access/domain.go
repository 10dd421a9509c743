// Package access resolves effective permissions over the membership graph
// and answers allow/deny questions against the resolved set.
package access

// Grant is a single effective permission reachable from a user through the
// membership graph. Grants are deduplicated by PermissionID; two distinct
// permission records with the same module and action stay separate entries
// in the resolved list.
type Grant struct {
	PermissionID int64  `json:"permissionId"`
	Action       string `json:"action"`
	Module       string `json:"module"`
}
