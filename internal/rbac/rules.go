package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"user": {
		"career:view",
		"job:view",
		"job:apply",
		"interview:*",
		"test:*",
		"chat:use",
		"profile:view",
	},
	"admin": {
		"*", // everything
	},
}
