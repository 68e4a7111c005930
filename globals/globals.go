package globals

var (
	// JwtSecret signs and verifies access tokens. main sets it from config.
	JwtSecret = []byte("blockpress-dev-secret")
)

// Context keys
type ContextKey string

const UserIDKey ContextKey = "userId"
const UsernameKey ContextKey = "username"
