package model

// UserRole comes from the token issued by the auth service; users themselves live elsewhere.
type UserRole string

const (
	Candidate UserRole = "candidate"
	Recruiter UserRole = "recruiter"
	Admin     UserRole = "admin"
)
