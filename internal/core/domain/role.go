package domain

const (
	RoleDispatcher = "dispatcher"
	RoleDriver     = "driver"
)
