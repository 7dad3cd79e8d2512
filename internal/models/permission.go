package models

// Known permission types. Any non-empty type makes the task visible to the
// grantee; only PermissionUpdate also allows editing it.
const (
	PermissionRead   = "read"
	PermissionUpdate = "update"
)

type Permission struct {
	ID     int64
	TaskID int64
	UserID int64
	Type   string
}
