package shared

const (
	UserRole = "user_role"

	RoleAdmin   = "admin"
	RoleLearner = "user"

	// Durable record keys
	RecordCourses  = "courses"
	RecordProgress = "progress"
	RecordUsers    = "users"

	BackupVersion = "1.0"

	HandlePrefix = "blob:"
)
