package models

// Status values shared by groups, networks, roles and users.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)
