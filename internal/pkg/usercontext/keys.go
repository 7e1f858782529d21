package usercontext

// Session and Locals keys shared by the auth controllers and the
// user-context middleware. The string values are baked into live
// sessions, so changing them logs everyone out.
const (
	// AuthKey marks a session as logged in.
	AuthKey = "authenticated"

	KeyUserID   = "user_id"
	KeyUsername = "username"
	KeyIsAdmin  = "isAdmin"

	// KeyFromProtected is set on Locals when the request carries a
	// valid session, so handlers can branch without another lookup.
	KeyFromProtected = "from_protected"
)
