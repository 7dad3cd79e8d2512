package models

type Task struct {
	ID          int64
	OwnerID     int64
	Title       string
	Description *string
}
