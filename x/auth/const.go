package auth

const (
	RequesterIdCtxKey   = "requesterId"
	RequesterRoleCtxKey = "requesterRole"
	SessionJtiCtxKey    = "sessionJti"
)

type Principal int

const (
	ISADMIN Principal = iota
)

const sessionAudience = "hmnp-admin"
